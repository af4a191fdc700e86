package model

// CompanyRecord is one row of a company search result: the latest filing
// year of a single EIN. Nullable metrics are pointers so missing values
// survive JSON as null and render as placeholders.
type CompanyRecord struct {
	EIN                 string   `json:"ein"`
	YearFilingFor       *int     `json:"year_filing_for"`
	CompanyName         *string  `json:"company_name"`
	NAICSCode           *string  `json:"naics_code"`
	IndustryDescription *string  `json:"industry_description"`
	NumEstablishments   *int     `json:"num_establishments"`
	TotalEmployees      *int     `json:"total_employees"`
	DARTRate            *float64 `json:"dart_rate"`
	TRIR                *float64 `json:"trir"`
	SeverityRate        *float64 `json:"severity_rate"`
	SafetyScore         *float64 `json:"safety_score"`
	State               *string  `json:"state"`
	City                *string  `json:"city,omitempty"`
	ZipCode             *string  `json:"zip_code,omitempty"`
}

// CompanyYear is a single filing year in a company's incident time series.
type CompanyYear struct {
	YearFilingFor   int      `json:"year_filing_for"`
	TotalDeaths     *int     `json:"total_deaths"`
	TotalDAFWCases  *int     `json:"total_dafw_cases"`
	TotalDJTRCases  *int     `json:"total_djtr_cases"`
	TotalOtherCases *int     `json:"total_other_cases"`
	DARTRate        *float64 `json:"dart_rate"`
	TRIR            *float64 `json:"trir"`
	SeverityRate    *float64 `json:"severity_rate"`
	SafetyScore     *float64 `json:"safety_score"`
}

// CompanyRow is a full row of the company view, used to assemble a profile.
type CompanyRow struct {
	CompanyRecord
	TotalDeaths     *int `json:"total_deaths"`
	TotalDAFWCases  *int `json:"total_dafw_cases"`
	TotalDJTRCases  *int `json:"total_djtr_cases"`
	TotalOtherCases *int `json:"total_other_cases"`
}

// CompanyProfile is the detail view of a company: header fields from the
// most recent filing plus the per-year series for charts and tables.
type CompanyProfile struct {
	EIN                 string        `json:"ein"`
	CompanyName         *string       `json:"company_name"`
	NAICSCode           *string       `json:"naics_code"`
	IndustryDescription *string       `json:"industry_description"`
	TotalEmployees      *int          `json:"total_employees"`
	NumEstablishments   *int          `json:"num_establishments"`
	State               *string       `json:"state"`
	City                *string       `json:"city"`
	ZipCode             *string       `json:"zip_code"`
	SafetyScore         *float64      `json:"safety_score"`
	Years               []CompanyYear `json:"years"`
}

// NewCompanyProfile builds a profile from rows ordered by filing year
// descending. The first row supplies the header. Returns nil for no rows.
func NewCompanyProfile(rows []CompanyRow) *CompanyProfile {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0]
	p := &CompanyProfile{
		EIN:                 first.EIN,
		CompanyName:         first.CompanyName,
		NAICSCode:           first.NAICSCode,
		IndustryDescription: first.IndustryDescription,
		TotalEmployees:      first.TotalEmployees,
		NumEstablishments:   first.NumEstablishments,
		State:               first.State,
		City:                first.City,
		ZipCode:             first.ZipCode,
		SafetyScore:         first.SafetyScore,
		Years:               make([]CompanyYear, 0, len(rows)),
	}
	for _, r := range rows {
		year := 0
		if r.YearFilingFor != nil {
			year = *r.YearFilingFor
		}
		p.Years = append(p.Years, CompanyYear{
			YearFilingFor:   year,
			TotalDeaths:     r.TotalDeaths,
			TotalDAFWCases:  r.TotalDAFWCases,
			TotalDJTRCases:  r.TotalDJTRCases,
			TotalOtherCases: r.TotalOtherCases,
			DARTRate:        r.DARTRate,
			TRIR:            r.TRIR,
			SeverityRate:    r.SeverityRate,
			SafetyScore:     r.SafetyScore,
		})
	}
	return p
}
