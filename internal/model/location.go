package model

// LocationRecord is one establishment row in a company's location list.
type LocationRecord struct {
	EstablishmentID        string   `json:"establishment_id"`
	EstablishmentName      *string  `json:"establishment_name"`
	AnnualAverageEmployees *int     `json:"annual_average_employees"`
	City                   *string  `json:"city"`
	State                  *string  `json:"state"`
	TRIR                   *float64 `json:"trir"`
	DARTRate               *float64 `json:"dart_rate"`
	SafetyScore            *float64 `json:"safety_score"`
}

// LocationYear is a full establishment-year row.
type LocationYear struct {
	LocationRecord
	EIN             string   `json:"ein"`
	StreetAddress   *string  `json:"street_address"`
	ZipCode         *string  `json:"zip_code"`
	YearFilingFor   int      `json:"year_filing_for"`
	TotalDeaths     *int     `json:"total_deaths"`
	TotalDAFWCases  *int     `json:"total_dafw_cases"`
	TotalDJTRCases  *int     `json:"total_djtr_cases"`
	TotalOtherCases *int     `json:"total_other_cases"`
	SeverityRate    *float64 `json:"severity_rate"`
	IsLatestEINYear bool     `json:"is_latest_ein_year"`
}

// LocationProfile is the detail view of a single establishment.
type LocationProfile struct {
	EIN                    string         `json:"ein"`
	EstablishmentID        string         `json:"establishment_id"`
	EstablishmentName      *string        `json:"establishment_name"`
	StreetAddress          *string        `json:"street_address"`
	City                   *string        `json:"city"`
	State                  *string        `json:"state"`
	ZipCode                *string        `json:"zip_code"`
	AnnualAverageEmployees *int           `json:"annual_average_employees"`
	SafetyScore            *float64       `json:"safety_score"`
	Years                  []LocationYear `json:"years"`
}

// NewLocationProfile builds a profile from rows ordered by filing year
// descending. The first row supplies the header, including the EIN used to
// link back to the owning company. Returns nil for no rows.
func NewLocationProfile(rows []LocationYear) *LocationProfile {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0]
	return &LocationProfile{
		EIN:                    first.EIN,
		EstablishmentID:        first.EstablishmentID,
		EstablishmentName:      first.EstablishmentName,
		StreetAddress:          first.StreetAddress,
		City:                   first.City,
		State:                  first.State,
		ZipCode:                first.ZipCode,
		AnnualAverageEmployees: first.AnnualAverageEmployees,
		SafetyScore:            first.SafetyScore,
		Years:                  rows,
	}
}
