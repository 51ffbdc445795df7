package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrThreadExists is returned when a thread for the same campaign/influencer
// pair is already on record (unique pair constraint).
var ErrThreadExists = errors.New("thread already exists for campaign/influencer pair")

// NotFoundError is the sentinel for a missing row of any entity.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

func NewCampaignNotFound(id uuid.UUID) error {
	return &NotFoundError{Entity: "campaign", ID: id}
}

func NewInfluencerNotFound(id uuid.UUID) error {
	return &NotFoundError{Entity: "influencer", ID: id}
}

func NewThreadNotFound(id uuid.UUID) error {
	return &NotFoundError{Entity: "thread", ID: id}
}

func NewMessageNotFound(id uuid.UUID) error {
	return &NotFoundError{Entity: "message", ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
