// Package events publishes salary change notifications on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/nats-io/nats.go"
)

// Action enum
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// AllSalaries matches every salary subject.
const AllSalaries = "salaries.>"

// SalaryEvent is the payload published after a salary record changes.
type SalaryEvent struct {
	Type        Action         `json:"type"`
	SalaryID    uint           `json:"salaryId"`
	OwnerUserID uint           `json:"ownerUserId"`
	Salary      *models.Salary `json:"salary,omitempty"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// Subject is salaries.<owner>.<action>.
func Subject(ownerUserID uint, action Action) string {
	return fmt.Sprintf("salaries.%d.%s", ownerUserID, action)
}

func (e SalaryEvent) Subject() string {
	return Subject(e.OwnerUserID, e.Type)
}

// Decode parses a message published by NATSPublisher.
func Decode(data []byte) (SalaryEvent, error) {
	var e SalaryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return SalaryEvent{}, fmt.Errorf("decode salary event: %w", err)
	}
	if e.OwnerUserID == 0 || e.Type == "" {
		return SalaryEvent{}, fmt.Errorf("decode salary event: missing owner or type")
	}
	return e, nil
}

// Publisher sends salary events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e SalaryEvent) error
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(ctx context.Context, e SalaryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode salary event: %w", err)
	}
	if err := p.conn.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}
	return nil
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, SalaryEvent) error { return nil }
