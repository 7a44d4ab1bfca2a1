package employee

import (
	"sort"

	"github.com/shopspring/decimal"
)

// EmployeeAnalytics は社員 1 名分の給与・職種履歴の集計です。
type EmployeeAnalytics struct {
	EmployeeID             string
	SalaryGrowthPercentage float64
	TotalSalaryIncreases   int
	TotalPromotions        int
}

// SalaryGrowthPercentage は最初の給与変更の旧給与から現在給与までの成長率 (%) を返します。
// 履歴がない、または基準給与が 0 の場合は 0 です。
func SalaryGrowthPercentage(current decimal.Decimal, history []*SalaryHistory) float64 {
	earliest := earliestSalaryChange(history)
	if earliest == nil || earliest.OldSalary.IsZero() {
		return 0
	}
	growth := current.Sub(earliest.OldSalary).Div(earliest.OldSalary).Mul(decimal.NewFromInt(100)).Round(2)
	return growth.InexactFloat64()
}

// TotalSalaryIncreases は昇給レコードの件数を返します。
func TotalSalaryIncreases(history []*SalaryHistory) int {
	count := 0
	for _, h := range history {
		if h.IsRaise() {
			count++
		}
	}
	return count
}

// TotalPromotions は昇格レコードの件数を返します。
func TotalPromotions(history []*RoleHistory) int {
	count := 0
	for _, h := range history {
		if h.IsPromotion() {
			count++
		}
	}
	return count
}

// BuildAnalytics は社員と履歴から EmployeeAnalytics を組み立てます。
func BuildAnalytics(emp *Employee, salaries []*SalaryHistory, roles []*RoleHistory) *EmployeeAnalytics {
	return &EmployeeAnalytics{
		EmployeeID:             emp.ID,
		SalaryGrowthPercentage: SalaryGrowthPercentage(emp.CurrentSalary, salaries),
		TotalSalaryIncreases:   TotalSalaryIncreases(salaries),
		TotalPromotions:        TotalPromotions(roles),
	}
}

func earliestSalaryChange(history []*SalaryHistory) *SalaryHistory {
	if len(history) == 0 {
		return nil
	}
	sorted := make([]*SalaryHistory, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted[0]
}
