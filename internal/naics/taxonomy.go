// Package naics resolves levels of the NAICS industry taxonomy and drives the
// drill-down and search navigation over it.
package naics

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safety-index/internal/model"
)

const (
	// ManufacturingCode is the synthetic root entry standing in for sectors
	// 31, 32 and 33. It has no row in the taxonomy table.
	ManufacturingCode = "3"
	// ManufacturingDescription is the label of the synthetic entry.
	ManufacturingDescription = "31 - 33 Manufacturing"
	// SearchLimit caps global search results.
	SearchLimit = 400
	// MinSearchTerm is the shortest term that enters search mode.
	MinSearchTerm = 2

	rootPattern = "__"
	// insertAfter is the last sector sorting before manufacturing.
	insertAfter = "21"
)

// Manufacturing is the synthetic sector node.
var Manufacturing = model.NaicsNode{Code: ManufacturingCode, Description: ManufacturingDescription}

// Source reads taxonomy rows. Patterns use LIKE syntax.
type Source interface {
	NAICSByPattern(ctx context.Context, pattern string) ([]model.NaicsNode, error)
	NAICSMatching(ctx context.Context, term string, limit int) ([]model.NaicsNode, error)
}

// Lookup is the taxonomy contract consumed by Navigator and served over HTTP.
type Lookup interface {
	Children(ctx context.Context, parent string) ([]model.NaicsNode, error)
	Search(ctx context.Context, term string) ([]model.NaicsNode, error)
}

// Taxonomy applies the level and search rules on top of a Source.
type Taxonomy struct {
	src Source
}

// NewTaxonomy creates a Taxonomy over src.
func NewTaxonomy(src Source) *Taxonomy {
	return &Taxonomy{src: src}
}

// ChildPattern returns the LIKE pattern selecting the immediate children of
// parent. Root selects 2-digit sectors; manufacturing selects every code
// under 3; any other parent selects codes exactly one digit longer.
func ChildPattern(parent string) string {
	switch parent {
	case "":
		return rootPattern
	case ManufacturingCode:
		return ManufacturingCode + "%"
	default:
		return parent + "_"
	}
}

// Children returns the immediate children of parent, or the sectors when
// parent is empty. Parents that are not numeric codes have no children.
func (t *Taxonomy) Children(ctx context.Context, parent string) ([]model.NaicsNode, error) {
	parent = strings.TrimSpace(parent)
	if parent != "" && !IsDigits(parent) {
		return []model.NaicsNode{}, nil
	}
	nodes, err := t.src.NAICSByPattern(ctx, ChildPattern(parent))
	if err != nil {
		return nil, eris.Wrapf(err, "naics: children of %q", parent)
	}
	if parent == "" {
		return InjectManufacturing(nodes), nil
	}
	return nonNil(nodes), nil
}

// Search returns codes or descriptions containing term, ordered by code and
// capped at SearchLimit. Terms naming manufacturing get the synthetic node
// first.
func (t *Taxonomy) Search(ctx context.Context, term string) ([]model.NaicsNode, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.NaicsNode{}, nil
	}
	nodes, err := t.src.NAICSMatching(ctx, term, SearchLimit)
	if err != nil {
		return nil, eris.Wrapf(err, "naics: search %q", term)
	}
	return PrependManufacturing(nodes, term), nil
}

// InjectManufacturing collapses sectors 31 to 33 into the synthetic node,
// placed before the first sector sorting after "21". Input must be ordered
// by code.
func InjectManufacturing(sectors []model.NaicsNode) []model.NaicsNode {
	out := make([]model.NaicsNode, 0, len(sectors)+1)
	inserted := false
	for _, n := range sectors {
		if isManufacturingSector(n.Code) {
			continue
		}
		if !inserted && n.Code > insertAfter {
			out = append(out, Manufacturing)
			inserted = true
		}
		out = append(out, n)
	}
	if !inserted {
		out = append(out, Manufacturing)
	}
	return out
}

// MentionsManufacturing reports whether a search term refers to the
// manufacturing sector.
func MentionsManufacturing(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	switch t {
	case "3", "31", "32", "33":
		return true
	}
	return strings.Contains(t, "manufact")
}

// PrependManufacturing puts the synthetic node first when term refers to
// manufacturing and the node is absent. The result never exceeds SearchLimit.
func PrependManufacturing(nodes []model.NaicsNode, term string) []model.NaicsNode {
	if !MentionsManufacturing(term) || containsCode(nodes, ManufacturingCode) {
		return truncate(nonNil(nodes))
	}
	out := make([]model.NaicsNode, 0, len(nodes)+1)
	out = append(out, Manufacturing)
	out = append(out, nodes...)
	return truncate(out)
}

func isManufacturingSector(code string) bool {
	switch code {
	case ManufacturingCode, "31", "32", "33":
		return true
	}
	return false
}

func containsCode(nodes []model.NaicsNode, code string) bool {
	for _, n := range nodes {
		if n.Code == code {
			return true
		}
	}
	return false
}

func truncate(nodes []model.NaicsNode) []model.NaicsNode {
	if len(nodes) > SearchLimit {
		return nodes[:SearchLimit]
	}
	return nodes
}

func nonNil(nodes []model.NaicsNode) []model.NaicsNode {
	if nodes == nil {
		return []model.NaicsNode{}
	}
	return nodes
}
