// Package session ties one learner's chat together: it builds the API
// client from configuration, streams each question through pkg/chat, and
// hands the finished turn to a background pool for storage.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/client"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/credentials"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/storage"
	"github.com/wahida/tutor/pkg/storage/inmemory"
	"github.com/wahida/tutor/pkg/storage/postgres"
	"github.com/wahida/tutor/pkg/storage/sqlite"
	"github.com/wahida/tutor/pkg/worker"
)

// Session is a conversation with the tutor. Ask may be called from one
// goroutine at a time; the accessors are safe for concurrent use.
type Session struct {
	cfg    *config.Config
	client *client.Client
	store  storage.Driver
	pool   *worker.Pool
	logger *slog.Logger
	now    func() time.Time

	mu             sync.RWMutex
	conversationID string

	closeOnce sync.Once
}

// Option configures New.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	tokens         client.TokenSource
	httpClient     *http.Client
	store          storage.Driver
	configDir      string
	conversationID string
	now            func() time.Time
}

// WithLogger sets the logger shared by the session's components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTokenSource replaces the credentials.toml backed token source.
func WithTokenSource(ts client.TokenSource) Option {
	return func(o *options) {
		o.tokens = ts
	}
}

// WithHTTPClient replaces the client's *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithStore uses d instead of opening the store named in the config. The
// session takes ownership of d.
func WithStore(d storage.Driver) Option {
	return func(o *options) {
		o.store = d
	}
}

// WithConfigDir sets the .tutor/ directory used for credentials.
func WithConfigDir(dir string) Option {
	return func(o *options) {
		o.configDir = dir
	}
}

// WithConversationID continues an existing conversation.
func WithConversationID(id string) Option {
	return func(o *options) {
		o.conversationID = id
	}
}

// WithClock overrides time.Now for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds a session from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}

	c, err := newClient(cfg, o)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store, err = OpenStore(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver: store,
		Logger: o.logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	conversationID := o.conversationID
	if conversationID == "" {
		conversationID = uuid.Must(uuid.NewV7()).String()
	}

	return &Session{
		cfg:            cfg,
		client:         c,
		store:          store,
		pool:           pool,
		logger:         o.logger,
		now:            o.now,
		conversationID: conversationID,
	}, nil
}

// NewClient builds only the API client described by cfg, for commands that
// do not chat. It honors WithLogger, WithTokenSource, WithHTTPClient and
// WithConfigDir.
func NewClient(cfg *config.Config, opts ...Option) (*client.Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	return newClient(cfg, o)
}

func newClient(cfg *config.Config, o *options) (*client.Client, error) {
	tokens := o.tokens
	if tokens == nil {
		mgr, err := credentials.NewManager(o.configDir)
		if err != nil {
			return nil, fmt.Errorf("opening credentials: %w", err)
		}
		tokens = credentials.NewSource(mgr, cfg.API.Profile)
	}

	clientOpts := []client.Option{
		client.WithLogger(o.logger),
		client.WithTokenSource(tokens),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(o.httpClient))
	}
	clientOpts = append(clientOpts, client.WithTimeout(cfg.API.TimeoutDuration()))

	return client.New(cfg.API.Target, clientOpts...)
}

// OpenStore opens the transcript store named by cfg: PostgreSQL when a DSN
// is set, then SQLite when a path is set, else an in-memory store.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.Driver, error) {
	switch {
	case cfg.PostgresDSN != "":
		d, err := postgres.NewDriver(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return d, nil
	case cfg.SQLitePath != "":
		d, err := sqlite.NewSQLiteDriver(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return d, nil
	default:
		return inmemory.NewDriver(), nil
	}
}

// Client returns the API client.
func (s *Session) Client() *client.Client {
	return s.client
}

// Store returns the transcript store.
func (s *Session) Store() storage.Driver {
	return s.store
}

// ConversationID returns the current conversation.
func (s *Session) ConversationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

// NewConversation starts a fresh conversation and returns its ID.
func (s *Session) NewConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = uuid.Must(uuid.NewV7()).String()
	return s.conversationID
}

// Ask sends question and streams the answer to h. The returned turn holds
// whatever arrived, even when err is non-nil; a turn that received anything
// is queued for storage.
func (s *Session) Ask(ctx context.Context, question string, h chat.Handlers, opts ...chat.Option) (*storage.Turn, error) {
	turn := &storage.Turn{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: s.ConversationID(),
		Question:       question,
		CreatedAt:      s.now(),
	}

	recording := chat.Handlers{
		OnChunk: func(c chat.RetrievedChunk) {
			turn.Chunks = append(turn.Chunks, c)
			if h.OnChunk != nil {
				h.OnChunk(c)
			}
		},
		OnResponse: func(r chat.Response) {
			turn.Response = r.Text
			if h.OnResponse != nil {
				h.OnResponse(r)
			}
		},
	}

	opts = append([]chat.Option{chat.WithFlushTrailing(s.cfg.Chat.FlushTrailing)}, opts...)
	err := s.client.StreamChat(ctx, client.ChatRequest{
		Message:        question,
		ConversationID: turn.ConversationID,
	}, recording, opts...)

	if err == nil || len(turn.Chunks) > 0 || turn.Answered() {
		if !s.pool.Enqueue(worker.Job{Turn: turn}) {
			s.logger.Warn("turn not recorded", "turn_id", turn.ID)
		}
	}

	if err != nil {
		return turn, fmt.Errorf("asking tutor: %w", err)
	}

	s.logger.Debug("turn complete",
		"turn_id", turn.ID,
		"chunks", len(turn.Chunks),
		"answered", turn.Answered(),
	)
	return turn, nil
}

// History returns recorded turns. Turns still queued for storage are not
// included.
func (s *Session) History(ctx context.Context, opts storage.ListOptions) ([]*storage.Turn, error) {
	return s.store.List(ctx, opts)
}

// Close waits for queued turns to be stored and closes the store.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.pool.Close()
		err = s.store.Close()
	})
	return err
}
