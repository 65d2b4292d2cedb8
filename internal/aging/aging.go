// Package aging classifies computing equipment by age for the
// traffic-light report.
package aging

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/opis/internal/model"
)

// Tier is an age bucket.
type Tier string

// Tiers, in report order.
const (
	TierStale   Tier = "stale"
	TierWarning Tier = "warning"
	TierFresh   Tier = "fresh"
	TierUnknown Tier = "unknown"
)

// Threshold bounds accepted by the report.
const (
	MinThreshold     = 1
	MaxThreshold     = 20
	DefaultThreshold = 5
)

// freshYears is the age below which equipment is fresh.
var freshYears = decimal.NewFromInt(3)

var daysPerYear = decimal.RequireFromString("365.25")

var priority = map[Tier]int{
	TierStale:   0,
	TierWarning: 1,
	TierFresh:   2,
	TierUnknown: 3,
}

// colors are the report's display classes per tier.
var colors = map[Tier]string{
	TierStale:   "danger",
	TierWarning: "warning",
	TierFresh:   "success",
	TierUnknown: "secondary",
}

// fills are the spreadsheet background colors per tier.
var fills = map[Tier]string{
	TierStale:   "FFCDD2",
	TierWarning: "FFF9C4",
	TierFresh:   "C8E6C9",
	TierUnknown: "EEEEEE",
}

// Color returns the display class of the tier.
func (t Tier) Color() string { return colors[t] }

// Fill returns the RGB hex fill used in spreadsheet exports.
func (t Tier) Fill() string {
	if f, ok := fills[t]; ok {
		return f
	}
	return fills[TierUnknown]
}

// AgeYears returns the age of equipment manufactured on mfg as of today,
// in years rounded to one decimal. It returns nil when mfg is unknown.
func AgeYears(mfg *model.Date, today time.Time) *decimal.Decimal {
	if mfg == nil {
		return nil
	}
	y, m, d := today.Date()
	start := time.Date(mfg.Year(), mfg.Month(), mfg.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int64(end.Sub(start).Hours() / 24)

	age := decimal.NewFromInt(days).Div(daysPerYear).Round(1)
	return &age
}

// Classify buckets an age against threshold years.
func Classify(age *decimal.Decimal, threshold int) Tier {
	switch {
	case age == nil:
		return TierUnknown
	case age.LessThan(freshYears):
		return TierFresh
	case age.LessThan(decimal.NewFromInt(int64(threshold))):
		return TierWarning
	default:
		return TierStale
	}
}

// ValidThreshold reports whether threshold is within the accepted range.
func ValidThreshold(threshold int) bool {
	return threshold >= MinThreshold && threshold <= MaxThreshold
}

// Row is one line of the traffic-light report.
type Row struct {
	Asset model.Asset
	Age   *decimal.Decimal
	Tier  Tier
}

// BuildRows classifies assets and sorts them stale first, then by name
// ignoring case.
func BuildRows(assets []model.Asset, threshold int, today time.Time) []Row {
	rows := make([]Row, 0, len(assets))
	for _, a := range assets {
		age := AgeYears(a.ManufactureDate, today)
		rows = append(rows, Row{Asset: a, Age: age, Tier: Classify(age, threshold)})
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by tier priority, then by name ignoring case.
func SortRows(rows []Row) {
	// Collators are not safe for concurrent use.
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := priority[rows[i].Tier], priority[rows[j].Tier]
		if pi != pj {
			return pi < pj
		}
		return col.CompareString(rows[i].Asset.Name, rows[j].Asset.Name) < 0
	})
}
