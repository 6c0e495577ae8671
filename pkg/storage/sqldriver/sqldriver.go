// Package sqldriver implements storage.Driver on top of database/sql using
// ent's dialect-aware SQL builder. It is database-agnostic and is embedded by
// the sqlite and postgres drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/storage"
)

const (
	turnsTable = "turns"

	columnID             = "id"
	columnConversationID = "conversation_id"
	columnQuestion       = "question"
	columnChunks         = "chunks"
	columnResponse       = "response"
	columnCreatedAt      = "created_at"
)

var turnColumns = []string{
	columnID,
	columnConversationID,
	columnQuestion,
	columnChunks,
	columnResponse,
	columnCreatedAt,
}

// Driver provides storage operations over an ent SQL driver.
type Driver struct {
	drv     *entsql.Driver
	dialect string
}

// Open wraps db for the given ent dialect and creates the schema if needed.
// The returned Driver owns db.
func Open(ctx context.Context, dialectName string, db *sql.DB) (*Driver, error) {
	d := &Driver{
		drv:     entsql.OpenDB(dialectName, db),
		dialect: dialectName,
	}

	if err := d.migrate(ctx); err != nil {
		d.drv.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return d, nil
}

// turnsSchema describes the turns table for ent's migrator. Text columns use
// the same unbounded size ent generates for field.Text.
func turnsSchema() *schema.Table {
	const textSize = 2147483647

	columns := []*schema.Column{
		{Name: columnID, Type: field.TypeString},
		{Name: columnConversationID, Type: field.TypeString},
		{Name: columnQuestion, Type: field.TypeString, Size: textSize},
		{Name: columnChunks, Type: field.TypeString, Size: textSize},
		{Name: columnResponse, Type: field.TypeString, Size: textSize},
		{Name: columnCreatedAt, Type: field.TypeInt64},
	}

	return &schema.Table{
		Name:       turnsTable,
		Columns:    columns,
		PrimaryKey: []*schema.Column{columns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "turn_conversation_id_created_at",
				Columns: []*schema.Column{columns[1], columns[5]},
			},
		},
	}
}

// migrate is append-only: tables, columns and indexes are created when
// missing and never dropped.
func (d *Driver) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, turnsSchema())
}

// Put stores a turn. Returns true if the turn was newly inserted, false if
// the ID already existed.
func (d *Driver) Put(ctx context.Context, t *storage.Turn) (bool, error) {
	if t == nil {
		return false, errors.New("cannot store nil turn")
	}
	if t.ID == "" {
		return false, errors.New("cannot store turn without id")
	}

	chunks := t.Chunks
	if chunks == nil {
		chunks = []chat.RetrievedChunk{}
	}
	chunksJSON, err := json.Marshal(chunks)
	if err != nil {
		return false, fmt.Errorf("failed to marshal chunks: %w", err)
	}

	query, args := entsql.Dialect(d.dialect).
		Insert(turnsTable).
		Columns(turnColumns...).
		Values(t.ID, t.ConversationID, t.Question, string(chunksJSON), t.Response, t.CreatedAt.UnixMilli()).
		OnConflict(entsql.ConflictColumns(columnID), entsql.DoNothing()).
		Query()

	var res sql.Result
	if err := d.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("could not execute turn creation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n > 0, nil
}

// Get retrieves a turn by its ID.
func (d *Driver) Get(ctx context.Context, id string) (*storage.Turn, error) {
	b := entsql.Dialect(d.dialect)
	query, args := b.Select(turnColumns...).
		From(b.Table(turnsTable)).
		Where(entsql.EQ(columnID, id)).
		Query()

	turns, err := d.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}
	if len(turns) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}

	return turns[0], nil
}

// List returns turns oldest first. With a limit, the most recent turns are
// kept.
func (d *Driver) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Turn, error) {
	b := entsql.Dialect(d.dialect)
	sel := b.Select(turnColumns...).
		From(b.Table(turnsTable)).
		OrderBy(entsql.Desc(columnCreatedAt), entsql.Desc(columnID))

	if opts.ConversationID != "" {
		sel.Where(entsql.EQ(columnConversationID, opts.ConversationID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	turns, err := d.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}

	slices.Reverse(turns)
	return turns, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.drv.Close()
}

func (d *Driver) query(ctx context.Context, query string, args []any) ([]*storage.Turn, error) {
	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*storage.Turn
	for rows.Next() {
		var (
			t          storage.Turn
			chunksJSON string
			createdAt  int64
		)
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Question, &chunksJSON, &t.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		if err := json.Unmarshal([]byte(chunksJSON), &t.Chunks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunks of turn %s: %w", t.ID, err)
		}
		t.CreatedAt = time.UnixMilli(createdAt).UTC()

		turns = append(turns, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}
