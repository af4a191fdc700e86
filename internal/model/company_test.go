package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNewCompanyProfile_Empty(t *testing.T) {
	assert.Nil(t, NewCompanyProfile(nil))
}

func TestNewCompanyProfile_HeaderFromFirstRow(t *testing.T) {
	rows := []CompanyRow{
		{
			CompanyRecord: CompanyRecord{
				EIN:            "12-3456789",
				YearFilingFor:  intPtr(2024),
				CompanyName:    strPtr("Acme Corp"),
				TotalEmployees: intPtr(250),
				SafetyScore:    floatPtr(91.5),
				TRIR:           floatPtr(1.2),
			},
			TotalDeaths: intPtr(0),
		},
		{
			CompanyRecord: CompanyRecord{
				EIN:           "12-3456789",
				YearFilingFor: intPtr(2023),
				CompanyName:   strPtr("Acme Corporation"),
				SafetyScore:   floatPtr(80),
			},
		},
	}

	p := NewCompanyProfile(rows)
	require.NotNil(t, p)
	assert.Equal(t, "12-3456789", p.EIN)
	assert.Equal(t, "Acme Corp", *p.CompanyName)
	assert.Equal(t, 250, *p.TotalEmployees)
	require.Len(t, p.Years, 2)
	assert.Equal(t, 2024, p.Years[0].YearFilingFor)
	assert.Equal(t, 2023, p.Years[1].YearFilingFor)
	assert.Nil(t, p.Years[1].TotalDeaths)
}

func TestNewLocationProfile(t *testing.T) {
	assert.Nil(t, NewLocationProfile(nil))

	rows := []LocationYear{
		{LocationRecord: LocationRecord{EstablishmentID: "e1", EstablishmentName: strPtr("Plant 1")}, EIN: "99", YearFilingFor: 2024},
		{LocationRecord: LocationRecord{EstablishmentID: "e1"}, EIN: "99", YearFilingFor: 2023},
	}
	p := NewLocationProfile(rows)
	require.NotNil(t, p)
	assert.Equal(t, "99", p.EIN)
	assert.Equal(t, "Plant 1", *p.EstablishmentName)
	assert.Len(t, p.Years, 2)
}

func TestSearchResultPage_TotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{5, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 20, 5},
		{10, 0, 0},
	}
	for _, tt := range tests {
		p := &SearchResultPage{TotalCount: tt.total, PageSize: tt.size}
		assert.Equal(t, tt.want, p.TotalPages(), "total=%d size=%d", tt.total, tt.size)
	}

	var nilPage *SearchResultPage
	assert.Equal(t, 0, nilPage.TotalPages())
}
