package collection

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoRule    = errors.New("no collection rule for stage")
	ErrNoSender  = errors.New("no sender configured for channel")
	ErrNoAddress = errors.New("contact unreachable on channel")
)

type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "PENDING"
	AttemptSent      AttemptStatus = "SENT"
	AttemptDelivered AttemptStatus = "DELIVERED"
	AttemptFailed    AttemptStatus = "FAILED"
	AttemptSkipped   AttemptStatus = "SKIPPED"
)

// Succeeded reports whether the gateway accepted the message.
func (s AttemptStatus) Succeeded() bool {
	return s == AttemptSent || s == AttemptDelivered
}

// Attempt is the persisted record of one day's outreach for one advance at one stage.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	AdvanceID   uuid.UUID     `json:"advance_id"`
	Stage       Stage         `json:"stage"`
	Channel     Channel       `json:"channel"`
	Status      AttemptStatus `json:"status"`
	MessageID   string        `json:"message_id,omitempty"`
	Error       string        `json:"error,omitempty"`
	AttemptDate time.Time     `json:"attempt_date"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Outcome is what a gateway reports for one send.
type Outcome struct {
	Status    AttemptStatus
	MessageID string
}
