package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// SSE bodies used across specs.
const (
	ChunkEvent    = `data: {"type":"chunk","text":"t1","metadata":{"topik":"X"},"score":0.9,"hintsRevealed":0}` + "\n\n"
	ResponseEvent = `data: {"type":"response","text":"done"}` + "\n\n"
	StartedEvent  = "event: status\ndata: {\"type\": \"started\"}\n\n"
	DoneEvent     = "event: status\ndata: {\"type\": \"completed\"}\n\n"
)

// FakeQuiz mirrors the backend's quiz question.
type FakeQuiz struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
}

// RecordedRequest is one request seen by a FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

// FakeAPI is an in-process tutoring backend for specs. It is a fiber app
// mounted on an httptest server through the net/http adaptor, so responses
// are delivered buffered rather than incrementally.
type FakeAPI struct {
	URL string

	server *httptest.Server

	mu          sync.Mutex
	chatBody    string
	chatStatus  int
	noContent   bool
	token       string
	quizzes     map[string]FakeQuiz
	runLimit    int
	runCount    int
	healthState string
	requests    []RecordedRequest
}

// NewFakeAPI starts a FakeAPI answering every chat with ChunkEvent followed
// by ResponseEvent. Call Close when done.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		chatBody:    StartedEvent + ChunkEvent + ResponseEvent + DoneEvent,
		chatStatus:  fiber.StatusOK,
		healthState: "ok",
		quizzes: map[string]FakeQuiz{
			"intro-python": {
				ID:          "intro-python",
				Prompt:      "What does print(1 + 1) output?",
				Choices:     []string{"11", "2", "'1 + 1'"},
				AnswerIndex: 1,
			},
		},
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(f.record, f.authorize)
	app.Get("/healthz", f.handleHealth)
	app.Post("/api/chat", f.handleChat)
	app.Get("/api/quiz/:id", f.handleGetQuiz)
	app.Post("/api/quiz/:id", f.handleSubmitQuiz)
	app.Get("/api/progress/:user", f.handleProgress)
	app.Post("/api/run", f.handleRun)

	f.server = httptest.NewServer(adaptor.FiberApp(app))
	f.URL = f.server.URL
	return f
}

// Close shuts the server down.
func (f *FakeAPI) Close() {
	f.server.Close()
}

// SetChatBody replaces the raw SSE body sent for every chat request.
func (f *FakeAPI) SetChatBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatBody = body
	f.noContent = false
}

// SetChatStatus makes chat requests fail with status and a FastAPI style
// detail message.
func (f *FakeAPI) SetChatStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatStatus = status
}

// SetChatNoContent makes chat requests answer 204 with no body.
func (f *FakeAPI) SetChatNoContent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noContent = true
}

// RequireToken rejects requests without "Bearer <token>".
func (f *FakeAPI) RequireToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// AddQuiz registers a quiz question.
func (f *FakeAPI) AddQuiz(q FakeQuiz) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[q.ID] = q
}

// SetRunLimit makes run requests beyond n answer 429.
func (f *FakeAPI) SetRunLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runLimit = n
}

// SetHealth sets the status reported by /healthz.
func (f *FakeAPI) SetHealth(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthState = status
}

// Requests returns a copy of every request seen so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request and whether there was one.
func (f *FakeAPI) LastRequest() (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}, false
	}
	return f.requests[len(f.requests)-1], true
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

func (f *FakeAPI) record(c *fiber.Ctx) error {
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        c.Method(),
		Path:          c.Path(),
		Authorization: c.Get(fiber.HeaderAuthorization),
		Body:          string(c.Body()),
	})
	f.mu.Unlock()
	return c.Next()
}

func (f *FakeAPI) authorize(c *fiber.Ctx) error {
	f.mu.Lock()
	token := f.token
	f.mu.Unlock()

	if token != "" && c.Path() != "/healthz" && c.Get(fiber.HeaderAuthorization) != "Bearer "+token {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	return c.Next()
}

func (f *FakeAPI) handleHealth(c *fiber.Ctx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(fiber.Map{"status": f.healthState})
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func (f *FakeAPI) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"detail": []fiber.Map{{"loc": []string{"body", "message"}, "msg": "Field required", "type": "missing"}},
		})
	}

	f.mu.Lock()
	status, body, noContent := f.chatStatus, f.chatBody, f.noContent
	f.mu.Unlock()

	if status != fiber.StatusOK {
		return detail(c, status, "chat unavailable")
	}
	if noContent {
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.SendString(body)
}

func (f *FakeAPI) handleGetQuiz(c *fiber.Ctx) error {
	f.mu.Lock()
	q, ok := f.quizzes[c.Params("id")]
	f.mu.Unlock()

	if !ok {
		return detail(c, fiber.StatusNotFound, "Quiz not found")
	}
	return c.JSON(q)
}

type quizAttempt struct {
	QuestionID    string `json:"question_id"`
	SelectedIndex int    `json:"selected_index"`
}

func (f *FakeAPI) handleSubmitQuiz(c *fiber.Ctx) error {
	f.mu.Lock()
	q, ok := f.quizzes[c.Params("id")]
	f.mu.Unlock()

	if !ok {
		return detail(c, fiber.StatusNotFound, "Quiz not found")
	}

	var attempt quizAttempt
	if err := c.BodyParser(&attempt); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	return c.JSON(fiber.Map{
		"correct":      attempt.SelectedIndex == q.AnswerIndex,
		"submitted_at": time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	})
}

func (f *FakeAPI) handleProgress(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user_id":     c.Params("user"),
		"streak_days": 3,
		"badges":      []string{"starter", "consistent-learner"},
		"last_active": "2026-03-01",
	})
}

type runRequest struct {
	Language string `json:"language"`
	Source   string `json:"source"`
}

func (f *FakeAPI) handleRun(c *fiber.Ctx) error {
	f.mu.Lock()
	f.runCount++
	limited := f.runLimit > 0 && f.runCount > f.runLimit
	f.mu.Unlock()

	if limited {
		return detail(c, fiber.StatusTooManyRequests, "Rate limit exceeded")
	}

	var req runRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if strings.Contains(req.Source, "import socket") {
		return detail(c, fiber.StatusBadRequest, "Network access is not permitted in the sandbox.")
	}

	preview := strings.ReplaceAll(req.Source, "\n", " ")
	if len(preview) > 80 {
		preview = preview[:80]
	}
	return c.JSON(fiber.Map{
		"stdout":            "Executed " + req.Language + " safely: " + preview,
		"status":            "completed",
		"execution_time_ms": 120,
	})
}
