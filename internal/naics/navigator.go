package naics

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sells-group/safety-index/internal/model"
)

// Mode is the navigator's position in the taxonomy.
type Mode int

const (
	// ModeRoot shows the sectors.
	ModeRoot Mode = iota
	// ModeLevel shows the children of the last breadcrumb node.
	ModeLevel
	// ModeSearching shows global search results; the breadcrumb is hidden.
	ModeSearching
)

func (m Mode) String() string {
	switch m {
	case ModeRoot:
		return "root"
	case ModeLevel:
		return "level"
	case ModeSearching:
		return "searching"
	default:
		return "unknown"
	}
}

// Navigator is the drill-down and search state of one session's industry
// picker. Fetched levels are cached by parent code. A fetch that completes
// after a newer one was started is cached but not displayed.
type Navigator struct {
	lookup Lookup

	mu        sync.Mutex
	hierarchy []model.NaicsNode
	searching bool
	term      string
	options   []model.NaicsNode
	levels    map[string][]model.NaicsNode
	chips     []string
	seq       uint64
}

// NewNavigator creates a Navigator at the root. Call Load to fetch sectors.
func NewNavigator(lookup Lookup) *Navigator {
	return &Navigator{
		lookup: lookup,
		levels: make(map[string][]model.NaicsNode),
	}
}

// Load displays the current level, fetching it unless cached.
func (n *Navigator) Load(ctx context.Context) error {
	n.mu.Lock()
	parent := n.parentLocked()
	n.mu.Unlock()
	return n.showLevel(ctx, parent)
}

// DrillInto descends into node. Search mode is left first.
func (n *Navigator) DrillInto(ctx context.Context, node model.NaicsNode) error {
	n.mu.Lock()
	n.searching = false
	n.term = ""
	n.hierarchy = append(n.hierarchy, node)
	n.mu.Unlock()
	return n.showLevel(ctx, node.Code)
}

// GoBack pops one breadcrumb level. It is a no-op at the root and while
// searching; the return value reports whether anything changed.
func (n *Navigator) GoBack(ctx context.Context) (bool, error) {
	n.mu.Lock()
	if n.searching || len(n.hierarchy) == 0 {
		n.mu.Unlock()
		return false, nil
	}
	n.hierarchy = n.hierarchy[:len(n.hierarchy)-1]
	parent := n.parentLocked()
	n.mu.Unlock()
	return true, n.showLevel(ctx, parent)
}

// Search enters search mode for terms of at least MinSearchTerm runes. A
// shorter term leaves search mode and restores the current level from cache.
func (n *Navigator) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchTerm {
		n.mu.Lock()
		n.searching = false
		n.term = ""
		parent := n.parentLocked()
		n.mu.Unlock()
		return n.showLevel(ctx, parent)
	}

	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	nodes, err := n.lookup.Search(ctx, term)
	if err != nil {
		return err
	}

	// The mode flips only with the rows that belong to it.
	n.mu.Lock()
	defer n.mu.Unlock()
	if seq == n.seq {
		n.searching = true
		n.term = term
		n.options = nodes
	}
	return nil
}

// Reset returns to the root with no chips and no search.
func (n *Navigator) Reset(ctx context.Context) error {
	n.mu.Lock()
	n.hierarchy = nil
	n.searching = false
	n.term = ""
	n.chips = nil
	n.mu.Unlock()
	return n.showLevel(ctx, "")
}

// AddChip selects code. Returns false when it was already selected.
func (n *Navigator) AddChip(code string) bool {
	code = strings.TrimSpace(code)
	n.mu.Lock()
	defer n.mu.Unlock()
	if code == "" || slices.Contains(n.chips, code) {
		return false
	}
	n.chips = append(n.chips, code)
	return true
}

// RemoveChip deselects code. Returns false when it was not selected.
func (n *Navigator) RemoveChip(code string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := slices.Index(n.chips, code)
	if i < 0 {
		return false
	}
	n.chips = slices.Delete(n.chips, i, i+1)
	return true
}

// Chips returns the selected codes in insertion order.
func (n *Navigator) Chips() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.chips)
}

// Mode returns the current navigation mode.
func (n *Navigator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch {
	case n.searching:
		return ModeSearching
	case len(n.hierarchy) == 0:
		return ModeRoot
	default:
		return ModeLevel
	}
}

// Parent returns the code of the level being browsed, "" at the root.
func (n *Navigator) Parent() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parentLocked()
}

// Hierarchy returns the breadcrumb path from the root.
func (n *Navigator) Hierarchy() []model.NaicsNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.hierarchy)
}

// SearchTerm returns the active search term, "" outside search mode.
func (n *Navigator) SearchTerm() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.term
}

// Options returns the nodes currently displayed.
func (n *Navigator) Options() []model.NaicsNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.options)
}

// CanGoBack reports whether GoBack would change anything.
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.searching && len(n.hierarchy) > 0
}

func (n *Navigator) parentLocked() string {
	if len(n.hierarchy) == 0 {
		return ""
	}
	return n.hierarchy[len(n.hierarchy)-1].Code
}

func (n *Navigator) showLevel(ctx context.Context, parent string) error {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	if cached, ok := n.levels[parent]; ok {
		n.options = cached
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	nodes, err := n.lookup.Children(ctx, parent)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels[parent] = nodes
	if seq == n.seq {
		n.options = nodes
	}
	return nil
}
