package transaction

import (
	"context"
	"time"
)

const (
	EventCreated = "transaction.created"
	EventUpdated = "transaction.updated"
	EventDeleted = "transaction.deleted"
)

// Event describes a committed ledger mutation.
type Event struct {
	Name          string    `json:"event"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	AccountID     string    `json:"accountId"`
	BudgetID      string    `json:"budgetId,omitempty"`
	PotID         string    `json:"potId,omitempty"`
	Type          Type      `json:"type"`
	Amount        int64     `json:"amount"`
	BalanceDelta  int64     `json:"balanceDelta"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
