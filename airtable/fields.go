package airtable

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	at "github.com/mehanizm/airtable"
)

// Customers columns
const (
	fieldCustomerID       = "ID"
	fieldName             = "Name"
	fieldEmail            = "Email"
	fieldPhone            = "Phone"
	fieldTier             = "Tier"
	fieldFavoriteCategory = "Favorite Category"
	fieldTotalPurchases   = "Total Purchases"
	fieldPurchaseCount    = "Purchase Count"
)

// Templates columns
const (
	fieldCategory    = "Category"
	fieldDescription = "Desc"
	fieldIdea        = "아이디어"
	fieldDuration    = "Duration"
	fieldDifficulty  = "Difficulty"
	fieldThumbnail   = "Thumbnail"
	fieldLikes       = "like"
)

// Content Ideas columns
const (
	fieldIdeaID     = "ID"
	fieldCustomer   = "Customer"
	fieldSubtitle   = "자막"
	fieldBackground = "배경 설명"
	fieldAutomation = "자동화"
)

// Orders columns
const (
	fieldOrderNumber  = "Order Number"
	fieldStatus       = "Status"
	fieldOrderDate    = "Order Date"
	fieldDeliveryDate = "Delivery Date"
	fieldUsedCredits  = "Used Credits"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders s as a formula string literal
func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}

// equals is a formula matching rows whose field equals value
func equals(field, value string) string {
	return fmt.Sprintf("{%s} = %s", field, quote(value))
}

// equalsText compares the text form of field, for number and link columns
func equalsText(field, value string) string {
	return fmt.Sprintf("{%s} & '' = %s", field, quote(value))
}

func str(r *at.Record, field string) string {
	switch v := r.Fields[field].(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func num(r *at.Record, field string) float64 {
	switch v := r.Fields[field].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func integer(r *at.Record, field string) int {
	return int(math.Round(num(r, field)))
}

func timestamp(r *at.Record, field string) *time.Time {
	s := str(r, field)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// first returns the first record of the first page for formula, or nil
func first(ctx context.Context, table *at.Table, formula string) (*at.Record, error) {
	records, err := list(ctx, table, formula, 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// list pages through every record matching formula, stopping at limit when limit > 0
func list(ctx context.Context, table *at.Table, formula string, limit int) ([]*at.Record, error) {
	out := make([]*at.Record, 0)
	offset := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := table.GetRecords()
		if formula != "" {
			q = q.WithFilterFormula(formula)
		}
		if limit > 0 {
			q = q.MaxRecords(limit)
		}
		if offset != "" {
			q = q.WithOffset(offset)
		}
		page, err := q.Do()
		if err != nil {
			return nil, err
		}
		out = append(out, page.Records...)
		if page.Offset == "" || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
		offset = page.Offset
	}
}

func single(records *at.Records) (*at.Record, error) {
	if records == nil || len(records.Records) == 0 {
		return nil, fmt.Errorf("store returned no record")
	}
	return records.Records[0], nil
}
