package review

import (
	"errors"
	"strings"
	"time"

	"stayfit/internal/domain/i18n"
)

// MaxCommentLength bounds each localized comment.
const MaxCommentLength = 2000

// Domain errors
var (
	ErrEmptyClientID  = errors.New("client id cannot be empty")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrEmptyComment   = errors.New("comment cannot be empty")
	ErrCommentTooLong  = errors.New("comment cannot exceed 2000 characters")
)

// Review is a client testimonial shown on the marketing pages once published.
type Review struct {
	ID        string             `json:"id" firestore:"-"`
	ClientID  string             `json:"clientId" firestore:"clientId"`
	Rating    int                `json:"rating" firestore:"rating"`
	Comment   i18n.LocalizedText `json:"comment" firestore:"comment"`
	Published bool               `json:"published" firestore:"published"`
	CreatedAt time.Time          `json:"createdAt" firestore:"createdAt"`
}

// Validate checks if the Review has valid data.
// PRE: Review struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Review) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return ErrEmptyClientID
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.Comment.IsEmpty() {
		return ErrEmptyComment
	}
	if len(r.Comment.En) > MaxCommentLength || len(r.Comment.Ar) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
