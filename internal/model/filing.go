package model

import "time"

// Filing is one establishment-year row of an OSHA ITA Form 300A summary.
type Filing struct {
	ID                     string
	EstablishmentID        string
	EstablishmentName      *string
	EIN                    string
	CompanyName            *string
	StreetAddress          *string
	City                   *string
	State                  *string
	ZipCode                *string
	NAICSCode              *string
	IndustryDescription    *string
	AnnualAverageEmployees *int
	TotalHoursWorked       *int64
	TotalDeaths            *int
	TotalDAFWCases         *int
	TotalDJTRCases         *int
	TotalOtherCases        *int
	TotalDAFWDays          *int
	TotalDJTRDays          *int
	YearFilingFor          int
	CreatedTimestamp       *time.Time
}

// FilingColumns lists the ita_filings columns in Values order.
var FilingColumns = []string{
	"id", "establishment_id", "establishment_name", "ein", "company_name",
	"street_address", "city", "state", "zip_code", "naics_code",
	"industry_description", "annual_average_employees", "total_hours_worked",
	"total_deaths", "total_dafw_cases", "total_djtr_cases", "total_other_cases",
	"total_dafw_days", "total_djtr_days", "year_filing_for", "created_timestamp",
}

// Values returns the row in FilingColumns order for bulk loading.
func (f Filing) Values() []any {
	return []any{
		f.ID, f.EstablishmentID, f.EstablishmentName, f.EIN, f.CompanyName,
		f.StreetAddress, f.City, f.State, f.ZipCode, f.NAICSCode,
		f.IndustryDescription, f.AnnualAverageEmployees, f.TotalHoursWorked,
		f.TotalDeaths, f.TotalDAFWCases, f.TotalDJTRCases, f.TotalOtherCases,
		f.TotalDAFWDays, f.TotalDJTRDays, f.YearFilingFor, f.CreatedTimestamp,
	}
}
