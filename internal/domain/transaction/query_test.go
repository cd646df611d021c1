package transaction_test

import (
	"testing"

	"MyFinance/internal/domain/transaction"
)

func TestNewSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field, direction string
		want             string
	}{
		{field: "", direction: "", want: "transaction_date DESC, id DESC"},
		{field: "amount", direction: "asc", want: "amount ASC, id ASC"},
		{field: "AMOUNT", direction: "ASC", want: "amount ASC, id ASC"},
		{field: "amount; DROP TABLE transactions", direction: "asc", want: "transaction_date ASC, id ASC"},
		{field: "recipient", direction: "sideways", want: "recipient DESC, id DESC"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.field+"/"+tt.direction, func(t *testing.T) {
			t.Parallel()

			if got := transaction.NewSort(tt.field, tt.direction).OrderClause(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSignedAmounts(t *testing.T) {
	t.Parallel()

	d := &transaction.Transaction{Amount: 300, Type: transaction.Debit}
	c := &transaction.Transaction{Amount: 300, Type: transaction.Credit}

	if d.SignedAmount() != -300 || d.BudgetContribution() != 300 {
		t.Fatalf("unexpected debit effects %d %d", d.SignedAmount(), d.BudgetContribution())
	}
	if c.SignedAmount() != 300 || c.BudgetContribution() != -300 {
		t.Fatalf("unexpected credit effects %d %d", c.SignedAmount(), c.BudgetContribution())
	}
}

func TestNewSummaryIgnoresUnknownTypes(t *testing.T) {
	t.Parallel()

	got := transaction.NewSummary([]transaction.TypeTotal{
		{Type: transaction.Credit, Count: 2, Total: 2500},
		{Type: transaction.Debit, Count: 2, Total: 1200},
	})
	if got.TotalTransactions != 4 || got.NetAmount != 1300 {
		t.Fatalf("unexpected summary %+v", *got)
	}

	empty := transaction.NewSummary(nil)
	if *empty != (transaction.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", *empty)
	}
}
