package events

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidEnvelope is wrapped by Validate failures.
var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope wraps every event the storefront emits. Consumers route on
// Name and Version and must not look inside Payload before checking them.
type Envelope[T any] struct {
	Name          string    `json:"eventName"`
	Version       int       `json:"eventVersion"`
	ID            string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

// Metadata links an event to the request that caused it.
type Metadata struct {
	CorrelationID string
	CausationID   string
}

func (e Envelope[T]) Validate(name string, version int) error {
	var problems []error
	if e.Name != name || e.Version != version {
		problems = append(problems, fmt.Errorf("got %s v%d, want %s v%d", e.Name, e.Version, name, version))
	}
	if e.ID == "" {
		problems = append(problems, errors.New("eventId is empty"))
	}
	if e.PartitionKey == "" {
		problems = append(problems, errors.New("partitionKey is empty"))
	}
	if e.Producer == "" {
		problems = append(problems, errors.New("producer is empty"))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEnvelope, errors.Join(problems...))
	}
	return nil
}
