package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// NUMERIC 列は ::text で読み出し、decimal に変換する。
func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("postgres: parse numeric %q: %w", raw, err)
	}
	return d, nil
}

func parseNullableDecimal(raw sql.NullString) (*decimal.Decimal, error) {
	if !raw.Valid {
		return nil, nil
	}
	d, err := parseDecimal(raw.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullableDecimal(value *decimal.Decimal) any {
	if value == nil {
		return nil
	}
	return value.StringFixed(2)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	d := dateOnly(value.Time)
	return &d
}

func placeholder(args []any) string {
	return "$" + strconv.Itoa(len(args))
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "\n         WHERE " + strings.Join(conditions, " AND ")
}
