package service

import (
	"errors"
	"time"

	"stayfit/internal/domain/i18n"
)

// MaxImageURLLength bounds ImageURL.
const MaxImageURLLength = 2048

// Domain errors
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrImageURLTooLong  = errors.New("image url cannot exceed 2048 characters")
	ErrNegativeOrder    = errors.New("order cannot be negative")
)

// Service is an offering listed on the home page. Description is markdown.
type Service struct {
	ID          string             `json:"id" firestore:"-"`
	Title       i18n.LocalizedText `json:"title" firestore:"title"`
	Description i18n.LocalizedText `json:"description" firestore:"description"`
	ImageURL    string             `json:"imageUrl" firestore:"imageUrl"`
	Order       int                `json:"order" firestore:"order"`
	CreatedAt   time.Time          `json:"createdAt" firestore:"createdAt"`
}

// Validate checks if the Service has valid data.
func (s *Service) Validate() error {
	if s.Title.En == "" {
		return ErrEmptyTitle
	}
	if s.Description.IsEmpty() {
		return ErrEmptyDescription
	}
	if len(s.ImageURL) > MaxImageURLLength {
		return ErrImageURLTooLong
	}
	if s.Order < 0 {
		return ErrNegativeOrder
	}
	return nil
}
