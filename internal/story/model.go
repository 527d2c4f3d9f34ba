// Package story stores the stories readers open.
package story

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when no story has the requested ID.
	ErrNotFound = errors.New("story not found")
	// ErrInvalidID is returned for an ID that is not a ULID.
	ErrInvalidID = errors.New("invalid story ID format")
	// ErrInvalid is returned for a story missing required fields.
	ErrInvalid = errors.New("invalid story")
)

// Access levels.
const (
	AccessFree    = "free"
	AccessPremium = "premium"
)

// Story is a reading text with its metadata.
type Story struct {
	ID            string    `db:"id" json:"id" yaml:"id"`
	Title         string    `db:"title" json:"title" yaml:"title" validate:"required"`
	Body          string    `db:"body" json:"story" yaml:"story" validate:"required"`
	PublishedOn   time.Time `db:"published_on" json:"date" yaml:"date" validate:"required"`
	ImageURL      string    `db:"image_url" json:"imageUrl" yaml:"image_url" validate:"required"`
	Category      string    `db:"category" json:"category" yaml:"category" validate:"required"`
	JapaneseLevel string    `db:"japanese_level" json:"japaneseLevel" yaml:"japanese_level" validate:"required"`
	Access        string    `db:"access" json:"access" yaml:"access" validate:"required,oneof=free premium"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt" yaml:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt" yaml:"updated_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every required field is set and that Access is
// either free or premium.
func (s *Story) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Tag() == "oneof" {
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(messages, ", "))
}
