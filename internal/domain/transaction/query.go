package transaction

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type Filter struct {
	From       *time.Time
	To         *time.Time
	Type       *Type
	CategoryId *ulid.ULID
	BudgetId   *ulid.ULID
	PotId      *ulid.ULID
	MinAmount  *int64
	MaxAmount  *int64
	Sender     string
	Recipient  string
}

type Sort struct {
	Field string
	Desc  bool
}

// sortColumns maps accepted sort fields to columns.
var sortColumns = map[string]string{
	"transaction_date": "transaction_date",
	"amount":           "amount",
	"type":             "type",
	"description":      "description",
	"sender":           "sender",
	"recipient":        "recipient",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
}

const DefaultSortColumn = "transaction_date"

// NewSort resolves a client supplied field and direction. Unknown fields fall back
// to transaction_date; any direction other than "asc" is descending.
func NewSort(field, direction string) Sort {
	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		column = DefaultSortColumn
	}
	return Sort{
		Field: column,
		Desc:  !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}
}

// OrderClause renders the sort; id breaks ties so pages are stable.
func (s Sort) OrderClause() string {
	column, ok := sortColumns[s.Field]
	if !ok {
		column = DefaultSortColumn
	}
	if s.Desc {
		return column + " DESC, id DESC"
	}
	return column + " ASC, id ASC"
}

type Window struct {
	From *time.Time
	To   *time.Time
}

// TypeTotal is one row of the per-type aggregate.
type TypeTotal struct {
	Type  Type
	Count int64
	Total int64
}

type Summary struct {
	TotalTransactions int64 `json:"totalTransactions"`
	TotalIncome       int64 `json:"totalIncome"`
	TotalExpense      int64 `json:"totalExpense"`
	NetAmount         int64 `json:"netAmount"`
}

func NewSummary(totals []TypeTotal) *Summary {
	s := &Summary{}
	for _, t := range totals {
		s.TotalTransactions += t.Count
		switch t.Type {
		case Credit:
			s.TotalIncome += t.Total
		case Debit:
			s.TotalExpense += t.Total
		}
	}
	s.NetAmount = s.TotalIncome - s.TotalExpense
	return s
}
