package curriculum_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-tos/internal/curriculum"
)

func TestNewPostgresSource_NilPool(t *testing.T) {
	if _, err := curriculum.NewPostgresSource(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestPostgresSource_ImportAndQuery(t *testing.T) {
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

	src, err := curriculum.NewPostgresSource(pool)
	if err != nil {
		t.Fatalf("NewPostgresSource() error = %v", err)
	}
	if err := src.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	bank, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	n, err := src.Import(ctx, bank.All())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 12 {
		t.Errorf("Import() = %d, want 12", n)
	}

	// Importing twice upserts rather than duplicating.
	if _, err := src.Import(ctx, bank.All()); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}

	subjects, err := src.Subjects(ctx)
	if err != nil {
		t.Fatalf("Subjects() error = %v", err)
	}
	if !reflect.DeepEqual(subjects, []string{"English", "Mathematics", "Science"}) {
		t.Errorf("Subjects() = %v", subjects)
	}

	grades, err := src.Grades(ctx, "Mathematics")
	if err != nil {
		t.Fatalf("Grades() error = %v", err)
	}
	if !reflect.DeepEqual(grades, []string{"Grade 7", "Grade 8"}) {
		t.Errorf("Grades() = %v", grades)
	}

	quarters, err := src.Quarters(ctx, "Mathematics", "Grade 7")
	if err != nil {
		t.Fatalf("Quarters() error = %v", err)
	}
	if !reflect.DeepEqual(quarters, []string{"Q1", "Q2"}) {
		t.Errorf("Quarters() = %v", quarters)
	}

	got, err := src.Competencies(ctx, "Mathematics", "Grade 7", "Q1")
	if err != nil {
		t.Fatalf("Competencies() error = %v", err)
	}
	want, _ := bank.Competencies(ctx, "Mathematics", "Grade 7", "Q1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Competencies() = %+v, want %+v", got, want)
	}
}
