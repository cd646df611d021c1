package infrastructure

import (
	"fmt"
	"io"

	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/xuri/excelize/v2"
)

const (
	TransactionSheetName        = "Transactions"
	TransactionSheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var transactionSheetHeaders = []string{"Date", "Type", "Description", "Sender", "Recipient", "Amount", "Category", "Budget", "Pot"}

// TransactionSheet renders transactions as an XLSX workbook with one row per transaction.
type TransactionSheet struct{}

func (TransactionSheet) Write(w io.Writer, transactions []*transaction.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TransactionSheetName); err != nil {
		return err
	}

	for i, header := range transactionSheetHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TransactionSheetName, cell, header); err != nil {
			return err
		}
	}

	for idx, t := range transactions {
		row := idx + 2
		values := []interface{}{
			t.TransactionDate.Format("2006-01-02"),
			string(t.Type),
			t.Description,
			t.Sender,
			t.Recipient,
			pkg.FormatMinor(t.Amount),
			idString(t.CategoryId),
			idString(t.BudgetId),
			idString(t.PotId),
		}
		if err := f.SetSheetRow(TransactionSheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}

	f.SetColWidth(TransactionSheetName, "A", "B", 12)
	f.SetColWidth(TransactionSheetName, "C", "C", 30)
	f.SetColWidth(TransactionSheetName, "D", "E", 20)
	f.SetColWidth(TransactionSheetName, "F", "F", 12)
	f.SetColWidth(TransactionSheetName, "G", "I", 28)

	return f.Write(w)
}

func idString(id *ulid.ULID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
