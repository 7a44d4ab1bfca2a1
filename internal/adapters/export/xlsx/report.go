package xlsx

import (
	"fmt"
	"io"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSalaryChanges = "Salary Changes"
	SheetSalaryMonthly = "Salary By Month"
	SheetSalaryByRole  = "Salary By Role"
	SheetRoleChanges   = "Role Changes"
	SheetRoleMonthly   = "Role By Month"
	SheetSummary       = "Summary"

	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	salaryChangeHeader = []interface{}{"Employee ID", "Employee", "Role", "Old Salary", "New Salary", "Change", "Change %", "Reason", "Effective Date", "Changed By"}
	salaryMonthHeader  = []interface{}{"Month", "Changes", "Avg Increase", "Total Increase"}
	salaryRoleHeader   = []interface{}{"Role", "Changes", "Avg Increase", "Avg Old Salary", "Avg New Salary"}
	roleChangeHeader   = []interface{}{"Employee ID", "Employee", "Old Role", "New Role", "Old Seniority", "New Seniority", "Direction", "Lateral", "Department Changed", "Reason", "Effective Date", "Changed By"}
	roleMonthHeader    = []interface{}{"Month", "Changes", "Promotions"}
)

// WriteSalaryReport は給与変更レポートを xlsx として w に書き出します。
func WriteSalaryReport(w io.Writer, r *report.SalaryReport) error {
	return write(w, func(b *book) error {
		rows := make([][]interface{}, 0, len(r.Changes))
		for _, c := range r.Changes {
			rows = append(rows, []interface{}{
				c.EmployeeID,
				c.EmployeeName,
				c.RoleTitle,
				c.OldSalary.InexactFloat64(),
				c.NewSalary.InexactFloat64(),
				c.ChangeAmount().InexactFloat64(),
				c.ChangePercentage().InexactFloat64(),
				c.ChangeReason,
				c.EffectiveDate.Format(dateLayout),
				deref(c.ChangedBy),
			})
		}
		if err := b.table(SheetSalaryChanges, salaryChangeHeader, rows); err != nil {
			return err
		}

		rows = rows[:0]
		for _, m := range r.ByMonth {
			rows = append(rows, []interface{}{
				m.Month.Format(monthLayout),
				m.Count,
				m.AvgIncrease.InexactFloat64(),
				m.TotalIncrease.InexactFloat64(),
			})
		}
		if err := b.table(SheetSalaryMonthly, salaryMonthHeader, rows); err != nil {
			return err
		}

		rows = rows[:0]
		for _, g := range r.ByRole {
			rows = append(rows, []interface{}{
				g.RoleTitle,
				g.TotalChanges,
				g.AvgIncreaseAmount.InexactFloat64(),
				g.AvgOldSalary.InexactFloat64(),
				g.AvgNewSalary.InexactFloat64(),
			})
		}
		if err := b.table(SheetSalaryByRole, salaryRoleHeader, rows); err != nil {
			return err
		}

		return b.table(SheetSummary, []interface{}{"Metric", "Value"}, [][]interface{}{
			{"Total Changes", len(r.Changes)},
			{"Raises", r.Raises},
			{"Decreases", r.Decreases},
		})
	})
}

// WriteRoleReport は職種変更レポートを xlsx として w に書き出します。
func WriteRoleReport(w io.Writer, r *report.RoleReport) error {
	return write(w, func(b *book) error {
		rows := make([][]interface{}, 0, len(r.Changes))
		for _, h := range r.Changes {
			rows = append(rows, []interface{}{
				h.EmployeeID,
				h.EmployeeName,
				roleTitle(h.OldRole),
				roleTitle(h.NewRole),
				string(h.OldSeniority),
				string(h.NewSeniority),
				string(h.PromotionOrDemotion()),
				h.IsLateralMove(),
				h.ChangedDepartment(),
				h.ChangeReason,
				h.EffectiveDate.Format(dateLayout),
				deref(h.ChangedBy),
			})
		}
		if err := b.table(SheetRoleChanges, roleChangeHeader, rows); err != nil {
			return err
		}

		rows = rows[:0]
		for _, m := range r.ByMonth {
			rows = append(rows, []interface{}{m.Month.Format(monthLayout), m.TotalChanges, m.Promotions})
		}
		if err := b.table(SheetRoleMonthly, roleMonthHeader, rows); err != nil {
			return err
		}

		return b.table(SheetSummary, []interface{}{"Metric", "Value"}, [][]interface{}{
			{"Total Changes", len(r.Changes)},
			{"Promotions", r.Promotions},
			{"Demotions", r.Demotions},
			{"Lateral Moves", r.LateralMoves},
		})
	})
}

type book struct {
	f      *excelize.File
	header int
	sheets int
}

func write(w io.Writer, fill func(*book) error) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("xlsx: create header style: %w", err)
	}

	b := &book{f: f, header: header}
	if err := fill(b); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

// table は header と rows を 1 枚のシートに書き込みます。最初のシートは既定シートを改名して使います。
func (b *book) table(sheet string, header []interface{}, rows [][]interface{}) error {
	if b.sheets == 0 {
		if err := b.f.SetSheetName(b.f.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("xlsx: rename sheet %q: %w", sheet, err)
		}
	} else if _, err := b.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: create sheet %q: %w", sheet, err)
	}
	b.sheets++

	if err := b.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header of %q: %w", sheet, err)
	}
	if err := b.f.SetRowStyle(sheet, 1, 1, b.header); err != nil {
		return fmt.Errorf("xlsx: style header of %q: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d of %q: %w", i+2, sheet, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("xlsx: set column width of %q: %w", sheet, err)
	}
	return b.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func roleTitle(r *employee.RoleRef) string {
	if r == nil {
		return ""
	}
	return r.Title
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
