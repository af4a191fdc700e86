// Package present formats records for display. Missing values render as a
// placeholder and never block the rest of a record.
package present

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/pagination"
)

// Placeholder stands in for a missing value.
const Placeholder = "—"

// Fallback labels for records without a name or industry.
const (
	UnnamedCompany  = "N/A Company"
	NoIndustry      = "Industry not specified"
	UnnamedLocation = "N/A Location"
)

// Badge is the safety score band.
type Badge string

// Score bands.
const (
	BadgeGood Badge = "good"
	BadgeFair Badge = "fair"
	BadgePoor Badge = "poor"
	BadgeNone Badge = "none"
)

var printer = message.NewPrinter(language.English)

// Int formats v with thousands separators.
func Int(v *int) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprintf("%d", *v)
}

// Float formats v with two decimals.
func Float(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprintf("%.2f", *v)
}

// Text returns the trimmed value or the placeholder.
func Text(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Placeholder
	}
	return strings.TrimSpace(*v)
}

// ScoreBadge bands a safety score: above 85 is good, above 60 fair.
func ScoreBadge(score *float64) Badge {
	switch {
	case score == nil:
		return BadgeNone
	case *score > 85:
		return BadgeGood
	case *score > 60:
		return BadgeFair
	default:
		return BadgePoor
	}
}

func orDefault(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return strings.TrimSpace(*v)
}

// Card is a company result formatted for a list.
type Card struct {
	EIN            string
	Name           string
	Industry       string
	Location       string
	Employees      string
	Establishments string
	TRIR           string
	DARTRate       string
	SafetyScore    string
	Badge          Badge
}

// CompanyCard formats one search row.
func CompanyCard(r model.CompanyRecord) Card {
	return Card{
		EIN:            r.EIN,
		Name:           orDefault(r.CompanyName, UnnamedCompany),
		Industry:       orDefault(r.IndustryDescription, NoIndustry),
		Location:       place(r.City, r.State),
		Employees:      Int(r.TotalEmployees),
		Establishments: Int(r.NumEstablishments),
		TRIR:           Float(r.TRIR),
		DARTRate:       Float(r.DARTRate),
		SafetyScore:    Float(r.SafetyScore),
		Badge:          ScoreBadge(r.SafetyScore),
	}
}

// LocationName returns the establishment name or its fallback.
func LocationName(r model.LocationRecord) string {
	return orDefault(r.EstablishmentName, UnnamedLocation)
}

// place joins city and state, skipping blanks.
func place(city, state *string) string {
	var parts []string
	for _, p := range []*string{city, state} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) == 0 {
		return Placeholder
	}
	return strings.Join(parts, ", ")
}

// Pager renders page buttons as "1 … 4 [5] 6 … 12", bracketing the current
// page. Returns "" when there are no buttons.
func Pager(buttons []pagination.Button) string {
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if b.Current {
			parts = append(parts, "["+b.Label()+"]")
			continue
		}
		parts = append(parts, b.Label())
	}
	return strings.Join(parts, " ")
}
