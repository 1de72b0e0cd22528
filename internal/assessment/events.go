package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event types recorded for each assessment.
const (
	EventGenerated  = "assessment_generated"
	EventDownloaded = "document_downloaded"
)

// EventsSchema creates the table used by PostgresEventLogger.
const EventsSchema = `CREATE TABLE IF NOT EXISTS assessment_events (
	id            BIGSERIAL PRIMARY KEY,
	assessment_id TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	data          JSONB NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Event is an analytics record about a generated assessment.
type Event struct {
	AssessmentID string
	EventType    string
	Data         map[string]any
	CreatedAt    time.Time
}

// GeneratedEvent describes res for the EventGenerated record.
func GeneratedEvent(res *Result) Event {
	return Event{
		AssessmentID: res.ID,
		EventType:    EventGenerated,
		Data: map[string]any{
			"subject":      res.Metadata.Subject,
			"grade":        res.Metadata.Grade,
			"quarter":      res.Metadata.Quarter,
			"competencies": len(res.Competencies),
			"items":        res.Summary.TotalItems,
			"points":       res.Summary.TotalPoints,
		},
	}
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(_ context.Context, event Event) error {
	if err := checkEvent(event); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the assessment_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

// Migrate creates the assessment_events table if it does not exist.
func (l *PostgresEventLogger) Migrate(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if _, err := l.pool.Exec(ctx, EventsSchema); err != nil {
		return fmt.Errorf("create assessment_events table: %w", err)
	}
	return nil
}

func (l *PostgresEventLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if err := checkEvent(event); err != nil {
		return err
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO assessment_events (assessment_id, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.AssessmentID,
		event.EventType,
		string(data),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"assessment_id", event.AssessmentID,
	)
	return nil
}

// CountEvents returns how many events of eventType were logged for id.
func (l *PostgresEventLogger) CountEvents(ctx context.Context, id, eventType string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM assessment_events WHERE assessment_id = $1 AND event_type = $2`,
		id, eventType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func checkEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.AssessmentID == "" {
		return fmt.Errorf("assessment_id is required")
	}
	return nil
}
