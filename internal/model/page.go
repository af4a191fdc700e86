package model

// SearchResultPage is the immutable outcome of one search execution.
type SearchResultPage struct {
	Items      []CompanyRecord `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// TotalPages returns the number of pages needed for TotalCount.
func (p *SearchResultPage) TotalPages() int {
	if p == nil || p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}
