package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

const dbTimeout = 5 * time.Second

// Schema creates the melcs table used by PostgresSource.
const Schema = `CREATE TABLE IF NOT EXISTS melcs (
	id          BIGSERIAL PRIMARY KEY,
	subject     TEXT NOT NULL,
	grade       TEXT NOT NULL,
	quarter     TEXT NOT NULL,
	position    INT  NOT NULL,
	code        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	UNIQUE (subject, grade, quarter, code)
)`

// PostgresSource is a PostgreSQL-backed MELC bank.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a MELC bank reading from the melcs table.
func NewPostgresSource(pool *pgxpool.Pool) (*PostgresSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresSource{pool: pool}, nil
}

// Migrate creates the melcs table if it does not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create melcs table: %w", err)
	}
	return nil
}

// Import upserts every quarter into the melcs table in one transaction.
// Positions follow the order of each quarter's competency list.
func (s *PostgresSource) Import(ctx context.Context, quarters []Quarter) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	n := 0
	for _, q := range quarters {
		for i, c := range q.Competencies {
			if _, err := tx.Exec(ctx,
				`INSERT INTO melcs (subject, grade, quarter, position, code, description)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (subject, grade, quarter, code)
				 DO UPDATE SET position = EXCLUDED.position, description = EXCLUDED.description`,
				q.Subject, q.Grade, q.Quarter, i, c.Code, c.Description,
			); err != nil {
				return 0, fmt.Errorf("import %s: %w", c.Code, err)
			}
			n++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	slog.Info("MELC bank imported", "competencies", n)
	return n, nil
}

func (s *PostgresSource) Subjects(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT subject FROM melcs`)
}

func (s *PostgresSource) Grades(ctx context.Context, subject string) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT grade FROM melcs WHERE subject = $1`, subject)
}

func (s *PostgresSource) Quarters(ctx context.Context, subject, grade string) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT quarter FROM melcs WHERE subject = $1 AND grade = $2`, subject, grade)
}

func (s *PostgresSource) Competencies(ctx context.Context, subject, grade, quarter string) ([]tos.Competency, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT code, description
		 FROM melcs
		 WHERE subject = $1 AND grade = $2 AND quarter = $3
		 ORDER BY position ASC, id ASC`,
		subject, grade, quarter,
	)
	if err != nil {
		return nil, fmt.Errorf("query competencies: %w", err)
	}

	comps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tos.Competency, error) {
		var c tos.Competency
		err := row.Scan(&c.Code, &c.Description)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan competencies: %w", err)
	}
	return comps, nil
}

func (s *PostgresSource) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query melcs: %w", err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan melcs: %w", err)
	}
	sort.Slice(values, func(i, j int) bool { return naturalLess(values[i], values[j]) })
	return values, nil
}
