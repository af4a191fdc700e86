package naics

import (
	"slices"
	"strings"

	"github.com/sells-group/safety-index/internal/model"
)

// sectorTitles are the 2022 NAICS sector titles.
var sectorTitles = map[string]string{
	"11": "Agriculture, Forestry, Fishing and Hunting",
	"21": "Mining, Quarrying, and Oil and Gas Extraction",
	"22": "Utilities",
	"23": "Construction",
	"31": "Manufacturing",
	"32": "Manufacturing",
	"33": "Manufacturing",
	"42": "Wholesale Trade",
	"44": "Retail Trade",
	"45": "Retail Trade",
	"48": "Transportation and Warehousing",
	"49": "Transportation and Warehousing",
	"51": "Information",
	"52": "Finance and Insurance",
	"53": "Real Estate and Rental and Leasing",
	"54": "Professional, Scientific, and Technical Services",
	"55": "Management of Companies and Enterprises",
	"56": "Administrative and Support and Waste Management and Remediation Services",
	"61": "Educational Services",
	"62": "Health Care and Social Assistance",
	"71": "Arts, Entertainment, and Recreation",
	"72": "Accommodation and Food Services",
	"81": "Other Services (except Public Administration)",
	"92": "Public Administration",
}

// SectorTitle returns the title of the 2-digit sector containing code.
func SectorTitle(code string) string {
	return sectorTitles[Sector(code)]
}

// Sectors returns every 2-digit sector ordered by code. Used to seed an
// empty taxonomy table.
func Sectors() []model.NaicsNode {
	out := make([]model.NaicsNode, 0, len(sectorTitles))
	for code, title := range sectorTitles {
		out = append(out, model.NaicsNode{Code: code, Description: title})
	}
	slices.SortFunc(out, func(a, b model.NaicsNode) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

// NormalizeCode cleans a NAICS code from a spreadsheet export: whitespace,
// trailing dashes ("5221--") and float suffixes ("236220.0") are removed.
// Returns "" when nothing numeric remains.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, '.'); i >= 0 && strings.Trim(code[i+1:], "0") == "" {
		code = code[:i]
	}
	code = strings.TrimRight(code, "-")
	if !IsDigits(code) {
		return ""
	}
	return code
}

// Sector returns the 2-digit sector code, or "" for codes shorter than 2.
func Sector(code string) string {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
