package report

import (
	"sort"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/shopspring/decimal"
)

const defaultTopIncreases = 10

// SalaryChange は給与変更レコードに、集計キーとなる社員の現在職種を添えたものです。
type SalaryChange struct {
	*employee.SalaryHistory
	RoleTitle string
}

// SalaryHistories は給与変更レコードの読み取り専用ビューです。各メソッドは新しいスライスを返します。
type SalaryHistories []SalaryChange

// MonthlySalaryStats は実効月ごとの給与変更集計です。
type MonthlySalaryStats struct {
	Month         time.Time
	Count         int
	AvgIncrease   decimal.Decimal
	TotalIncrease decimal.Decimal
}

// RoleGrowth は職種ごとの給与変更集計です。
type RoleGrowth struct {
	RoleTitle         string
	AvgIncreaseAmount decimal.Decimal
	TotalChanges      int
	AvgOldSalary      decimal.Decimal
	AvgNewSalary      decimal.Decimal
}

func (s SalaryHistories) filter(keep func(SalaryChange) bool) SalaryHistories {
	out := make(SalaryHistories, 0, len(s))
	for _, c := range s {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// RaisesOnly は昇給のみを返します。
func (s SalaryHistories) RaisesOnly() SalaryHistories {
	return s.filter(func(c SalaryChange) bool { return c.IsRaise() })
}

// DecreasesOnly は減給のみを返します。
func (s SalaryHistories) DecreasesOnly() SalaryHistories {
	return s.filter(func(c SalaryChange) bool { return c.IsDecrease() })
}

// ByDateRange は実効日付が [start, end] に含まれるレコードを返します。nil の端は制限しません。
func (s SalaryHistories) ByDateRange(start, end *time.Time) SalaryHistories {
	return s.filter(func(c SalaryChange) bool { return inRange(c.EffectiveDate, start, end) })
}

// ByYear は実効日付の年で絞り込みます。
func (s SalaryHistories) ByYear(year int) SalaryHistories {
	return s.filter(func(c SalaryChange) bool { return c.EffectiveDate.Year() == year })
}

// TopIncreases は昇給額の大きい順に n 件返します。n が 0 以下の場合は 10 件です。
func (s SalaryHistories) TopIncreases(n int) SalaryHistories {
	if n <= 0 {
		n = defaultTopIncreases
	}
	raises := s.RaisesOnly()
	sort.SliceStable(raises, func(i, j int) bool {
		return raises[i].ChangeAmount().GreaterThan(raises[j].ChangeAmount())
	})
	if len(raises) > n {
		raises = raises[:n]
	}
	return raises
}

// ByMonth は実効月ごとの件数と変更額を月の昇順で返します。
func (s SalaryHistories) ByMonth() []MonthlySalaryStats {
	buckets := make(map[time.Time]*MonthlySalaryStats)
	for _, c := range s {
		month := monthOf(c.EffectiveDate)
		b, ok := buckets[month]
		if !ok {
			b = &MonthlySalaryStats{Month: month, TotalIncrease: decimal.Zero}
			buckets[month] = b
		}
		b.Count++
		b.TotalIncrease = b.TotalIncrease.Add(c.ChangeAmount())
	}

	out := make([]MonthlySalaryStats, 0, len(buckets))
	for _, b := range buckets {
		b.AvgIncrease = average(b.TotalIncrease, b.Count)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// AvgGrowthByRole は職種ごとの平均変更額を降順で返します。
func (s SalaryHistories) AvgGrowthByRole() []RoleGrowth {
	type acc struct {
		title          string
		count          int
		totalIncrease  decimal.Decimal
		totalOldSalary decimal.Decimal
		totalNewSalary decimal.Decimal
	}
	byRole := make(map[string]*acc)
	var order []string
	for _, c := range s {
		a, ok := byRole[c.RoleTitle]
		if !ok {
			a = &acc{title: c.RoleTitle}
			byRole[c.RoleTitle] = a
			order = append(order, c.RoleTitle)
		}
		a.count++
		a.totalIncrease = a.totalIncrease.Add(c.ChangeAmount())
		a.totalOldSalary = a.totalOldSalary.Add(c.OldSalary)
		a.totalNewSalary = a.totalNewSalary.Add(c.NewSalary)
	}

	out := make([]RoleGrowth, 0, len(byRole))
	for _, title := range order {
		a := byRole[title]
		out = append(out, RoleGrowth{
			RoleTitle:         a.title,
			AvgIncreaseAmount: average(a.totalIncrease, a.count),
			TotalChanges:      a.count,
			AvgOldSalary:      average(a.totalOldSalary, a.count),
			AvgNewSalary:      average(a.totalNewSalary, a.count),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgIncreaseAmount.GreaterThan(out[j].AvgIncreaseAmount)
	})
	return out
}

// RoleHistories は職種変更レコードの読み取り専用ビューです。
type RoleHistories []*employee.RoleHistory

// MonthlyRoleStats は実効月ごとの職種変更集計です。
type MonthlyRoleStats struct {
	Month        time.Time
	TotalChanges int
	Promotions   int
}

func (r RoleHistories) filter(keep func(*employee.RoleHistory) bool) RoleHistories {
	out := make(RoleHistories, 0, len(r))
	for _, h := range r {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

// PromotionsOnly は昇格のみを返します。
func (r RoleHistories) PromotionsOnly() RoleHistories {
	return r.filter((*employee.RoleHistory).IsPromotion)
}

// DemotionsOnly は降格のみを返します。
func (r RoleHistories) DemotionsOnly() RoleHistories {
	return r.filter((*employee.RoleHistory).IsDemotion)
}

// LateralMovesOnly は等級を変えない職種変更のみを返します。
func (r RoleHistories) LateralMovesOnly() RoleHistories {
	return r.filter((*employee.RoleHistory).IsLateralMove)
}

// ByDateRange は実効日付が [start, end] に含まれるレコードを返します。
func (r RoleHistories) ByDateRange(start, end *time.Time) RoleHistories {
	return r.filter(func(h *employee.RoleHistory) bool { return inRange(h.EffectiveDate, start, end) })
}

// ByYear は実効日付の年で絞り込みます。
func (r RoleHistories) ByYear(year int) RoleHistories {
	return r.filter(func(h *employee.RoleHistory) bool { return h.EffectiveDate.Year() == year })
}

// ByMonth は実効月ごとの変更件数と昇格件数を月の昇順で返します。
func (r RoleHistories) ByMonth() []MonthlyRoleStats {
	buckets := make(map[time.Time]*MonthlyRoleStats)
	for _, h := range r {
		month := monthOf(h.EffectiveDate)
		b, ok := buckets[month]
		if !ok {
			b = &MonthlyRoleStats{Month: month}
			buckets[month] = b
		}
		b.TotalChanges++
		if h.IsPromotion() {
			b.Promotions++
		}
	}

	out := make([]MonthlyRoleStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func inRange(d time.Time, start, end *time.Time) bool {
	day := dateOf(d)
	if start != nil && day.Before(dateOf(*start)) {
		return false
	}
	if end != nil && day.After(dateOf(*end)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func monthOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
