package assessment_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-tos/internal/assessment"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()

	err := logger.LogEvent(t.Context(), assessment.Event{
		AssessmentID: "a-1",
		EventType:    assessment.EventGenerated,
		Data: map[string]any{
			"items": 30,
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != assessment.EventGenerated {
		t.Errorf("EventType = %q, want %s", events[0].EventType, assessment.EventGenerated)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresFields(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()

	tests := []struct {
		name  string
		event assessment.Event
	}{
		{"no type", assessment.Event{AssessmentID: "a-1"}},
		{"no assessment", assessment.Event{EventType: assessment.EventDownloaded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := logger.LogEvent(t.Context(), tt.event); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(logger.Events()) != 0 {
		t.Errorf("len(events) = %d, want 0", len(logger.Events()))
	}
}

func TestGeneratedEvent(t *testing.T) {
	b := assessment.NewBuilder(assessment.BuilderConfig{})
	res, err := b.Build(assessment.Request{
		Metadata:     assessment.Metadata{Subject: "Science", Grade: "Grade 8", Quarter: "Q3"},
		Competencies: sampleMELCs,
		TotalItems:   30,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ev := assessment.GeneratedEvent(res)
	if ev.AssessmentID != res.ID || ev.EventType != assessment.EventGenerated {
		t.Errorf("event = %+v", ev)
	}
	if ev.Data["points"] != 66 || ev.Data["competencies"] != 2 {
		t.Errorf("Data = %v, want 66 points over 2 competencies", ev.Data)
	}
}

func TestPostgresEventLogger_NilPool(t *testing.T) {
	logger := assessment.NewPostgresEventLogger(nil)

	err := logger.LogEvent(t.Context(), assessment.Event{
		AssessmentID: "a-1",
		EventType:    assessment.EventGenerated,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
	if err := logger.Migrate(t.Context()); err == nil {
		t.Fatal("expected Migrate() error for nil pool")
	}
}

func TestPostgresEventLogger_LogEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("tos"),
		postgres.WithUsername("tos"),
		postgres.WithPassword("tos"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)

	logger := assessment.NewPostgresEventLogger(pool)
	if err := logger.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for range 2 {
		if err := logger.LogEvent(ctx, assessment.Event{
			AssessmentID: "a-1",
			EventType:    assessment.EventDownloaded,
		}); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
	}

	n, err := logger.CountEvents(ctx, "a-1", assessment.EventDownloaded)
	if err != nil {
		t.Fatalf("CountEvents() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountEvents() = %d, want 2", n)
	}
}
