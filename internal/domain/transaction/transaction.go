package transaction

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Type string

const (
	Debit  Type = "DEBIT"
	Credit Type = "CREDIT"
)

func (t Type) Valid() bool {
	return t == Debit || t == Credit
}

// Metadata is an opaque key-value bag carried alongside a transaction.
type Metadata map[string]any

type Transaction struct {
	Id              ulid.ULID  `json:"id"`
	UserId          ulid.ULID  `json:"userId"`
	AccountId       ulid.ULID  `json:"accountId"`
	CategoryId      *ulid.ULID `json:"categoryId,omitempty"`
	BudgetId        *ulid.ULID `json:"budgetId,omitempty"`
	PotId           *ulid.ULID `json:"potId,omitempty"`
	Description     string     `json:"description"`
	Recipient       string     `json:"recipient"`
	Sender          string     `json:"sender"`
	Amount          int64      `json:"amount"`
	Type            Type       `json:"type"`
	TransactionDate time.Time  `json:"transactionDate"`
	Metadata        Metadata   `json:"metadata,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SignedAmount is the effect on the account balance: credits add, debits subtract.
func (t *Transaction) SignedAmount() int64 {
	if t.Type == Credit {
		return t.Amount
	}
	return -t.Amount
}

// BudgetContribution is the effect on a linked budget's spent amount.
func (t *Transaction) BudgetContribution() int64 {
	if t.Type == Debit {
		return t.Amount
	}
	return -t.Amount
}

func (t *Transaction) clone() *Transaction {
	c := *t
	if t.Metadata != nil {
		c.Metadata = make(Metadata, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Actor is the authenticated user on whose behalf a mutation runs.
type Actor struct {
	UserID   ulid.ULID
	Username string
}

// Draft is the input of CreateTransaction. Sender and Recipient are attributed from
// the actor unless KeepParties is set, which internal callers use when they name
// both parties themselves.
type Draft struct {
	CategoryId      *ulid.ULID
	BudgetId        *ulid.ULID
	PotId           *ulid.ULID
	Description     string
	Recipient       string
	Sender          string
	Amount          int64
	Type            Type
	TransactionDate time.Time
	Metadata        Metadata
	KeepParties     bool
}

// IDUpdate distinguishes "leave unchanged" (Set false) from "clear" (Set true, Value nil).
type IDUpdate struct {
	Set   bool
	Value *ulid.ULID
}

func SetID(id *ulid.ULID) IDUpdate {
	return IDUpdate{Set: true, Value: id}
}

// Patch holds optional changes; nil pointers leave fields untouched.
type Patch struct {
	CategoryId      IDUpdate
	BudgetId        IDUpdate
	PotId           IDUpdate
	Description     *string
	Recipient       *string
	Sender          *string
	Amount          *int64
	Type            *Type
	TransactionDate *time.Time
	Metadata        *Metadata
}

func (p *Patch) applyTo(t *Transaction) {
	if p.CategoryId.Set {
		t.CategoryId = p.CategoryId.Value
	}
	if p.BudgetId.Set {
		t.BudgetId = p.BudgetId.Value
	}
	if p.PotId.Set {
		t.PotId = p.PotId.Value
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Recipient != nil {
		t.Recipient = *p.Recipient
	}
	if p.Sender != nil {
		t.Sender = *p.Sender
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.TransactionDate != nil {
		t.TransactionDate = p.TransactionDate.UTC()
	}
	if p.Metadata != nil {
		t.Metadata = *p.Metadata
	}
}

// DuplicateKey is the tuple that identifies a double submission on one account.
type DuplicateKey struct {
	AccountId       ulid.ULID
	Description     string
	Recipient       string
	Amount          int64
	TransactionDate time.Time
}

func (t *Transaction) DuplicateKey() DuplicateKey {
	return DuplicateKey{
		AccountId:       t.AccountId,
		Description:     t.Description,
		Recipient:       t.Recipient,
		Amount:          t.Amount,
		TransactionDate: t.TransactionDate,
	}
}
