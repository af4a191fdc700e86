// Package pagination computes page metadata and the page-button window shown
// under a result list.
package pagination

import "strconv"

// Window is how many pages are shown on each side of the current page.
const Window = 2

// Button is one entry of a page-button row: a zero-based page or an ellipsis.
type Button struct {
	Page     int  `json:"page"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// Label is the text shown on the button: the one-based page number or "…".
func (b Button) Label() string {
	if b.Ellipsis {
		return "…"
	}
	return strconv.Itoa(b.Page + 1)
}

// Meta describes one page of a result set.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// NewMeta computes page metadata. From and To are one-based row positions of
// the page; both are 0 when the page is empty.
func NewMeta(page, pageSize, totalCount, items int) Meta {
	m := Meta{Page: max(page, 0), PageSize: pageSize, TotalCount: max(totalCount, 0)}
	m.TotalPages = TotalPages(m.TotalCount, pageSize)
	if items > 0 {
		m.From = m.Page*pageSize + 1
		m.To = m.From + items - 1
	}
	return m
}

// HasPrev reports whether a previous page exists.
func (m Meta) HasPrev() bool { return m.Page > 0 }

// HasNext reports whether a later page exists.
func (m Meta) HasNext() bool { return m.Page+1 < m.TotalPages }

// TotalPages is ceil(total/pageSize); 0 for empty results or a non-positive
// page size.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Buttons returns the page-button row for a result set. No buttons are shown
// when everything fits on one page. Otherwise the row holds up to 2*Window+1
// pages around current, clipped at the edges, plus the first and last page
// with an ellipsis wherever pages are skipped.
func Buttons(current, total, pageSize int) []Button {
	if total <= 0 || pageSize <= 0 || total <= pageSize {
		return nil
	}
	pages := TotalPages(total, pageSize)
	current = min(max(current, 0), pages-1)

	lo := max(0, current-Window)
	hi := min(pages-1, current+Window)

	var out []Button
	if lo > 0 {
		out = append(out, Button{Page: 0})
		if lo > 1 {
			out = append(out, Button{Ellipsis: true})
		}
	}
	for p := lo; p <= hi; p++ {
		out = append(out, Button{Page: p, Current: p == current})
	}
	if hi < pages-1 {
		if hi < pages-2 {
			out = append(out, Button{Ellipsis: true})
		}
		out = append(out, Button{Page: pages - 1})
	}
	return out
}

