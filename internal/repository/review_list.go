package repository

import (
	"context"
	"errors"
	"fmt"

	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/domain/task"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReviewListRepository interface {
	SaveReviewList(ctx context.Context, term string, list domain.ReviewList) error
	ListReviewLists(ctx context.Context) ([]domain.ReviewList, error)
	GetReviewList(ctx context.Context, id string) (domain.ReviewList, error)
	SaveMediaFailure(ctx context.Context, failure *task.MediaFailureTask) error
}

type reviewListRepository struct {
	db DB
}

func NewReviewListRepository(db DB) ReviewListRepository {
	return &reviewListRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS review_lists (
	id         TEXT PRIMARY KEY,
	term       TEXT NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	reviews    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS media_failures (
	id        UUID PRIMARY KEY,
	bucket    TEXT NOT NULL,
	key       TEXT NOT NULL,
	error     TEXT NOT NULL,
	failed_at TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates the tables the repository writes to
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *reviewListRepository) SaveReviewList(ctx context.Context, term string, list domain.ReviewList) error {
	query := `
	INSERT INTO review_lists (id, term, title, url, reviews, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (id)
	DO UPDATE SET term = $2, title = $3, url = $4, reviews = $5, updated_at = now()`
	_, err := r.db.Exec(ctx, query, list.ID, term, list.Title, list.URL, list.Reviews)
	if err != nil {
		return fmt.Errorf("failed to save review list %s: %w", list.ID, err)
	}

	return nil
}

func (r *reviewListRepository) ListReviewLists(ctx context.Context) ([]domain.ReviewList, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, url, reviews FROM review_lists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query review lists: %w", err)
	}

	lists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReviewList, error) {
		return scanReviewList(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read review lists: %w", err)
	}
	return lists, nil
}

func (r *reviewListRepository) GetReviewList(ctx context.Context, id string) (domain.ReviewList, error) {
	row := r.db.QueryRow(ctx, `SELECT id, title, url, reviews FROM review_lists WHERE id = $1`, id)

	list, err := scanReviewList(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ReviewList{}, fmt.Errorf("review list %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ReviewList{}, fmt.Errorf("failed to get review list %s: %w", id, err)
	}
	return list, nil
}

func scanReviewList(row pgx.Row) (domain.ReviewList, error) {
	var list domain.ReviewList
	err := row.Scan(&list.ID, &list.Title, &list.URL, &list.Reviews)
	return list, err
}

func (r *reviewListRepository) SaveMediaFailure(ctx context.Context, failure *task.MediaFailureTask) error {
	query := `
	INSERT INTO media_failures (id, bucket, key, error, failed_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, failure.ID, failure.Bucket, failure.Key, failure.Error, failure.FailedAt)
	if err != nil {
		return fmt.Errorf("failed to save media failure for %s/%s: %w", failure.Bucket, failure.Key, err)
	}

	return nil
}
