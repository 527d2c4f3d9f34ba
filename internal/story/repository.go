package story

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
)

//go:generate mockgen -source=repository.go -destination=../mocks/story/mock_repository.go -package=mock_story

// Repository defines operations for managing stories.
type Repository interface {
	Create(ctx context.Context, s *Story) error
	FindByID(ctx context.Context, id string) (*Story, error)
	FindAll(ctx context.Context) ([]Story, error)
	Delete(ctx context.Context, id string) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db, now: time.Now}
}

// Create validates s, assigns it a new ID and inserts it.
func (r *DBRepository) Create(ctx context.Context, s *Story) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = ulid.Make().String()
	now := r.now().UTC().Truncate(time.Second)
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO stories (id, title, body, published_on, image_url, category, japanese_level, access, created_at, updated_at)
		VALUES (:id, :title, :body, :published_on, :image_url, :category, :japanese_level, :access, :created_at, :updated_at)`,
		s)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(insert story) > %w", err)
	}
	return nil
}

// FindByID returns the story with the given ID.
func (r *DBRepository) FindByID(ctx context.Context, id string) (*Story, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidID)
	}

	var s Story
	err := r.db.GetContext(ctx, &s, "SELECT * FROM stories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(story) > %w", err)
	}
	return &s, nil
}

// FindAll returns every story, newest first.
func (r *DBRepository) FindAll(ctx context.Context) ([]Story, error) {
	stories := []Story{}
	if err := r.db.SelectContext(ctx, &stories, "SELECT * FROM stories ORDER BY published_on DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(stories) > %w", err)
	}
	return stories, nil
}

// Delete removes the story with the given ID.
func (r *DBRepository) Delete(ctx context.Context, id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	result, err := r.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete story) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}
