// AngelaMos | 2026
// workbook.go

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/debt"
)

const (
	SheetDebts     = "Debts"
	SheetCustomers = "Customers"
	SheetPayments  = "Payments"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var (
	debtHeader = []any{
		"ID", "Customer", "Phone", "Items", "Total", "Paid", "Balance",
		"Status", "Due Date", "Overdue", "Created By", "Created At",
	}
	customerHeader = []any{
		"ID", "Name", "Phone", "Email", "Address", "Debts", "Total",
		"Paid", "Outstanding", "Overdue", "Credit Score", "Created At",
	}
	paymentHeader = []any{
		"ID", "Debt ID", "Customer", "Amount", "Method", "Note",
		"Recorded By", "Recorded At",
	}
)

// Data is everything one business export contains.
type Data struct {
	Debts     []debt.Debt
	Customers []customer.Listing
	Payments  []debt.Payment
	Now       time.Time
}

// Build renders data as an XLSX workbook with one sheet per record type.
func Build(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDebts); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCustomers, SheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	customers := make(map[string]string, len(data.Debts))
	debtRows := make([][]any, 0, len(data.Debts))
	for i := range data.Debts {
		d := &data.Debts[i]
		customers[d.ID] = d.CustomerName
		debtRows = append(debtRows, []any{
			d.ID,
			d.CustomerName,
			d.CustomerPhone,
			itemSummary(d.Items),
			d.Total.InexactFloat64(),
			d.AmountPaid.InexactFloat64(),
			d.Balance.InexactFloat64(),
			d.Status.Label(),
			formatDate(d.DueDate),
			yesNo(d.IsOverdue(data.Now)),
			d.CreatedBy,
			d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	customerRows := make([][]any, 0, len(data.Customers))
	for _, l := range data.Customers {
		c, s := l.Customer, l.Summary
		customerRows = append(customerRows, []any{
			c.ID,
			c.Name,
			c.Phone,
			c.Email,
			c.Address,
			s.DebtCount,
			s.Total.InexactFloat64(),
			s.Paid.InexactFloat64(),
			s.Outstanding.InexactFloat64(),
			s.OverdueCount,
			s.CreditScore(),
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	paymentRows := make([][]any, 0, len(data.Payments))
	for _, p := range data.Payments {
		paymentRows = append(paymentRows, []any{
			p.ID,
			p.DebtID,
			customers[p.DebtID],
			p.Amount.InexactFloat64(),
			p.Method,
			p.Note,
			p.RecordedBy,
			p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetDebts, debtHeader, debtRows},
		{SheetCustomers, customerHeader, customerRows},
		{SheetPayments, paymentHeader, paymentRows},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows, bold); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(
	f *excelize.File,
	sheet string,
	header []any,
	rows [][]any,
	headerStyle int,
) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

func itemSummary(items debt.Items) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%s @ %s", it.Name, it.Quantity, it.Price.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Filename names the download after the business and the export day.
func Filename(businessName string, now time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(businessName))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "business"
	}
	return fmt.Sprintf("%s-export-%s.xlsx", slug, now.Format("20060102"))
}
