// Package session is the controller of one search page: it owns the live
// filter state and the industry navigator, debounces input into searches and
// drops responses that no longer match what the user is looking at.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/safety-index/internal/apperr"
	"github.com/sells-group/safety-index/internal/debounce"
	"github.com/sells-group/safety-index/internal/filter"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/pagination"
)

// Default debounce windows.
const (
	DefaultTextDebounce  = 700 * time.Millisecond
	DefaultNAICSDebounce = 200 * time.Millisecond
)

// Searcher executes a company search for a filter snapshot.
type Searcher interface {
	Search(ctx context.Context, s filter.State) (*model.SearchResultPage, error)
}

// Result is what a search delivers to the page.
type Result struct {
	State   filter.State
	Page    *model.SearchResultPage
	Buttons []pagination.Button
	// Empty is set when no criteria are active and no query was issued.
	Empty   bool
	Err     error
	Message string
}

// NaicsView is the industry picker as the page renders it.
type NaicsView struct {
	Mode      naics.Mode
	Hierarchy []model.NaicsNode
	Options   []model.NaicsNode
	Chips     []string
	Term      string
}

// Options configure a Controller. Zero durations use the defaults.
type Options struct {
	TextDebounce  time.Duration
	NAICSDebounce time.Duration
	PageSize      int
	Clock         debounce.Clock
	OnResult      func(Result)
	OnNaics       func(NaicsView)
}

// Controller serializes all mutation of a session's state. Text and numeric
// inputs wait TextDebounce; discrete inputs go through the same slot with no
// delay so a pending text search is replaced rather than joined.
type Controller struct {
	searcher Searcher
	nav      *naics.Navigator
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc

	main      *debounce.Debouncer
	naicsDeb  *debounce.Debouncer
	naicsTerm string

	mu   sync.Mutex
	live *filter.Live
	gen  uint64
	last Result
}

// New creates a Controller. The context bounds every search it issues;
// Close cancels it.
func New(ctx context.Context, searcher Searcher, lookup naics.Lookup, opts Options) *Controller {
	if opts.TextDebounce <= 0 {
		opts.TextDebounce = DefaultTextDebounce
	}
	if opts.NAICSDebounce <= 0 {
		opts.NAICSDebounce = DefaultNAICSDebounce
	}
	if opts.Clock == nil {
		opts.Clock = debounce.RealClock{}
	}

	c := &Controller{
		searcher: searcher,
		nav:      naics.NewNavigator(lookup),
		opts:     opts,
		live:     filter.NewLive(),
	}
	if opts.PageSize > 0 {
		c.live.SetPageSize(opts.PageSize)
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.main = debounce.New(func() { c.run(c.ctx) }, debounce.WithClock(opts.Clock))
	c.naicsDeb = debounce.New(c.runNaicsSearch, debounce.WithClock(opts.Clock))
	return c
}

// Close stops pending work and cancels in-flight searches.
func (c *Controller) Close() {
	c.main.Suppress()
	c.naicsDeb.Suppress()
	c.cancel()
}

// State returns a snapshot of the live filters.
func (c *Controller) State() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live.Snapshot()
}

// ActiveCount is the number shown on the clear-all control.
func (c *Controller) ActiveCount() int {
	return c.State().ActiveCount()
}

// Last returns the most recently delivered result.
func (c *Controller) Last() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SetTerm updates the company-name search text.
func (c *Controller) SetTerm(term string) { c.textChange(func(l *filter.Live) { l.SetTerm(term) }) }

// SetEmployeesMin updates the lower employee bound from raw input.
func (c *Controller) SetEmployeesMin(raw string) {
	c.textChange(func(l *filter.Live) { l.SetEmployeesMin(raw) })
}

// SetEmployeesMax updates the upper employee bound from raw input.
func (c *Controller) SetEmployeesMax(raw string) {
	c.textChange(func(l *filter.Live) { l.SetEmployeesMax(raw) })
}

// SetSafetyMin updates the lower safety score bound from raw input.
func (c *Controller) SetSafetyMin(raw string) {
	c.textChange(func(l *filter.Live) { l.SetSafetyMin(raw) })
}

// SetSafetyMax updates the upper safety score bound from raw input.
func (c *Controller) SetSafetyMax(raw string) {
	c.textChange(func(l *filter.Live) { l.SetSafetyMax(raw) })
}

// SetZip updates the zip code filter.
func (c *Controller) SetZip(zip string) { c.textChange(func(l *filter.Live) { l.SetZip(zip) }) }

// SetStateCode updates the state dropdown.
func (c *Controller) SetStateCode(code string) {
	c.discreteChange(func(l *filter.Live) { l.SetStateCode(code) })
}

// SetMostRecentYear toggles the recency checkbox.
func (c *Controller) SetMostRecentYear(on bool) {
	c.discreteChange(func(l *filter.Live) { l.SetMostRecentYear(on) })
}

// SetSortBy changes the result order and returns to the first page.
func (c *Controller) SetSortBy(sortBy string) {
	c.discreteChange(func(l *filter.Live) { l.SetSortBy(sortBy) })
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(n int) {
	c.discreteChange(func(l *filter.Live) { l.SetPageSize(n) })
}

// GoToPage moves to page p, keeping every filter.
func (c *Controller) GoToPage(p int) {
	c.discreteChange(func(l *filter.Live) { l.SetPage(p) })
}

// AddIndustry selects an industry chip.
func (c *Controller) AddIndustry(code string) {
	if !c.nav.AddChip(code) {
		return
	}
	c.discreteChange(func(l *filter.Live) { l.AddIndustry(code) })
	c.notifyNaics()
}

// RemoveIndustry deselects an industry chip.
func (c *Controller) RemoveIndustry(code string) {
	if !c.nav.RemoveChip(code) {
		return
	}
	c.discreteChange(func(l *filter.Live) { l.RemoveIndustry(code) })
	c.notifyNaics()
}

// LoadNaics displays the navigator's current level.
func (c *Controller) LoadNaics(ctx context.Context) error {
	err := c.nav.Load(ctx)
	c.notifyNaics()
	return err
}

// DrillInto opens a taxonomy node, leaving any industry search.
func (c *Controller) DrillInto(ctx context.Context, node model.NaicsNode) error {
	c.naicsDeb.Cancel()
	err := c.nav.DrillInto(ctx, node)
	c.notifyNaics()
	return err
}

// GoBack returns to the parent taxonomy level.
func (c *Controller) GoBack(ctx context.Context) error {
	changed, err := c.nav.GoBack(ctx)
	if changed {
		c.notifyNaics()
	}
	return err
}

// SearchNaics debounces a free-text industry search.
func (c *Controller) SearchNaics(term string) {
	c.mu.Lock()
	c.naicsTerm = term
	c.mu.Unlock()
	c.naicsDeb.Schedule(c.opts.NAICSDebounce)
}

// Naics returns the industry picker state.
func (c *Controller) Naics() NaicsView {
	return NaicsView{
		Mode:      c.nav.Mode(),
		Hierarchy: c.nav.Hierarchy(),
		Options:   c.nav.Options(),
		Chips:     c.nav.Chips(),
		Term:      c.nav.SearchTerm(),
	}
}

// ClearAll resets every filter and the industry picker, then runs exactly
// one search.
func (c *Controller) ClearAll(ctx context.Context) Result {
	c.main.Suppress()
	c.naicsDeb.Cancel()

	c.mu.Lock()
	c.live.Clear()
	c.naicsTerm = ""
	c.mu.Unlock()

	if err := c.nav.Reset(ctx); err != nil {
		zap.L().Warn("session: reset industry picker", zap.Error(err))
	}
	c.notifyNaics()

	c.main.Resume()
	return c.Refresh(ctx)
}

// Apply makes several filter changes through set with searching held back,
// then runs exactly one search for the result.
func (c *Controller) Apply(ctx context.Context, set func(*Controller)) Result {
	c.main.Suppress()
	set(c)
	c.main.Resume()
	return c.Refresh(ctx)
}

// Refresh cancels any pending debounced search and runs one now.
func (c *Controller) Refresh(ctx context.Context) Result {
	c.main.Cancel()
	return c.run(ctx)
}

func (c *Controller) textChange(mutate func(*filter.Live)) {
	c.change(mutate, c.opts.TextDebounce)
}

func (c *Controller) discreteChange(mutate func(*filter.Live)) {
	c.change(mutate, 0)
}

func (c *Controller) change(mutate func(*filter.Live), delay time.Duration) {
	c.mu.Lock()
	mutate(c.live)
	c.mu.Unlock()
	c.main.Schedule(delay)
}

// run searches for the current snapshot. The result is delivered only if no
// newer search started meanwhile and the filters still match the snapshot.
func (c *Controller) run(ctx context.Context) Result {
	c.mu.Lock()
	snap := c.live.Snapshot()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	res := Result{State: snap}
	if !snap.HasActiveCriteria() {
		res.Empty = true
	} else {
		page, err := c.searcher.Search(ctx, snap)
		if err != nil {
			zap.L().Error("session: search failed",
				zap.Error(err),
				zap.String("kind", apperr.KindOf(err).String()),
			)
			res.Err = err
			res.Message = apperr.UserMessage(err)
		} else {
			res.Page = page
			res.Buttons = pagination.Buttons(snap.Page, page.TotalCount, snap.PageSize)
		}
	}

	c.mu.Lock()
	if gen != c.gen || !snap.Equal(c.live.Snapshot()) {
		c.mu.Unlock()
		zap.L().Debug("session: discarded stale response", zap.Uint64("generation", gen))
		return res
	}
	c.last = res
	c.mu.Unlock()

	if c.opts.OnResult != nil {
		c.opts.OnResult(res)
	}
	return res
}

func (c *Controller) runNaicsSearch() {
	c.mu.Lock()
	term := c.naicsTerm
	c.mu.Unlock()

	if err := c.nav.Search(c.ctx, term); err != nil {
		zap.L().Error("session: industry search failed", zap.Error(err), zap.String("term", term))
	}
	c.notifyNaics()
}

func (c *Controller) notifyNaics() {
	if c.opts.OnNaics != nil {
		c.opts.OnNaics(c.Naics())
	}
}
