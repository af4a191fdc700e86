// Package ingest loads OSHA ITA Form 300A summary exports and NAICS seed
// files into the store.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/safety-index/internal/fetcher"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/store"
)

// DefaultBatchSize is the number of filings per upsert.
const DefaultBatchSize = 5000

// Result summarizes one import.
type Result struct {
	BatchID  uuid.UUID     `json:"batch_id"`
	Rows     int64         `json:"rows"`
	Skipped  int           `json:"skipped"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// ITALoader streams an ITA export into the store.
type ITALoader struct {
	Sink      store.Writer
	Fetcher   fetcher.Fetcher
	BatchSize int
	TempDir   string
}

// itaColumn binds a Filing field to its accepted header names.
type itaColumn struct {
	names []string
	set   func(f *model.Filing, v *string)
}

var itaColumns = []itaColumn{
	{[]string{"establishment_name", "estab_name"}, func(f *model.Filing, v *string) { f.EstablishmentName = v }},
	{[]string{"company_name"}, func(f *model.Filing, v *string) { f.CompanyName = v }},
	{[]string{"street_address", "address"}, func(f *model.Filing, v *string) { f.StreetAddress = v }},
	{[]string{"city"}, func(f *model.Filing, v *string) { f.City = v }},
	{[]string{"state"}, func(f *model.Filing, v *string) {
		if v != nil {
			up := strings.ToUpper(*v)
			v = &up
		}
		f.State = v
	}},
	{[]string{"zip_code", "zip"}, func(f *model.Filing, v *string) { f.ZipCode = v }},
	{[]string{"naics_code", "naics"}, func(f *model.Filing, v *string) {
		if v != nil {
			code := naics.NormalizeCode(*v)
			if code == "" {
				v = nil
			} else {
				v = &code
			}
		}
		f.NAICSCode = v
	}},
	{[]string{"industry_description", "naics_description"}, func(f *model.Filing, v *string) { f.IndustryDescription = v }},
	{[]string{"annual_average_employees"}, func(f *model.Filing, v *string) { f.AnnualAverageEmployees = parseInt(v) }},
	{[]string{"total_hours_worked"}, func(f *model.Filing, v *string) { f.TotalHoursWorked = parseInt64(v) }},
	{[]string{"total_deaths"}, func(f *model.Filing, v *string) { f.TotalDeaths = parseInt(v) }},
	{[]string{"total_dafw_cases"}, func(f *model.Filing, v *string) { f.TotalDAFWCases = parseInt(v) }},
	{[]string{"total_djtr_cases"}, func(f *model.Filing, v *string) { f.TotalDJTRCases = parseInt(v) }},
	{[]string{"total_other_cases"}, func(f *model.Filing, v *string) { f.TotalOtherCases = parseInt(v) }},
	{[]string{"total_dafw_days"}, func(f *model.Filing, v *string) { f.TotalDAFWDays = parseInt(v) }},
	{[]string{"total_djtr_days"}, func(f *model.Filing, v *string) { f.TotalDJTRDays = parseInt(v) }},
	{[]string{"created_timestamp"}, func(f *model.Filing, v *string) { f.CreatedTimestamp = parseTimestamp(v) }},
}

// itaParser turns rows into filings using a header resolved once.
type itaParser struct {
	id, est, ein, year int
	fields             []boundColumn
}

type boundColumn struct {
	idx int
	ok  bool
	set func(*model.Filing, *string)
}

func newITAParser(header []string) (*itaParser, error) {
	cols := newColumns(header)
	p := &itaParser{}
	var missing []string
	for _, req := range []struct {
		dst   *int
		names []string
	}{
		{&p.id, []string{"id"}},
		{&p.est, []string{"establishment_id"}},
		{&p.ein, []string{"ein"}},
		{&p.year, []string{"year_filing_for", "year"}},
	} {
		i, ok := cols.index(req.names...)
		if !ok {
			missing = append(missing, req.names[0])
			continue
		}
		*req.dst = i
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("ingest: ita header missing %s", strings.Join(missing, ", "))
	}
	for _, c := range itaColumns {
		i, ok := cols.index(c.names...)
		p.fields = append(p.fields, boundColumn{idx: i, ok: ok, set: c.set})
	}
	return p, nil
}

// parse returns false for rows lacking an id, establishment, EIN or year.
func (p *itaParser) parse(row []string) (model.Filing, bool) {
	id := cell(row, p.id, true)
	est := cell(row, p.est, true)
	ein := cell(row, p.ein, true)
	year := parseInt(cell(row, p.year, true))
	if id == nil || est == nil || ein == nil || year == nil {
		return model.Filing{}, false
	}
	f := model.Filing{ID: *id, EstablishmentID: *est, EIN: *ein, YearFilingFor: *year}
	for _, c := range p.fields {
		c.set(&f, cell(row, c.idx, c.ok))
	}
	return f, true
}

// Load imports source (a path or URL to .csv, .xlsx or .zip) and refreshes
// the derived views. Rows are parsed and written concurrently; the first
// failure cancels both sides.
func (l *ITALoader) Load(ctx context.Context, source string) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.New()}
	log := zap.L().With(zap.String("component", "ingest.ita"), zap.String("batch_id", res.BatchID.String()))

	path, cleanup, err := fetcher.Localize(ctx, l.Fetcher, source, l.TempDir)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: fetch ita source")
	}
	defer cleanup()

	g, gctx := errgroup.WithContext(ctx)
	tbl, err := fetcher.OpenTable(gctx, path, fetcher.TableOptions{Encoding: fetcher.Latin1, TempDir: l.TempDir})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open ita table")
	}
	defer tbl.Close() //nolint:errcheck

	parser, err := newITAParser(tbl.Header)
	if err != nil {
		return nil, err
	}
	log.Info("ingest: loading ita export", zap.String("source", source))

	size := l.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make(chan []model.Filing, 2)

	g.Go(func() error {
		defer close(batches)
		batch := make([]model.Filing, 0, size)
		seen := make(map[string]int, size)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			select {
			case batches <- batch:
			case <-gctx.Done():
				return gctx.Err()
			}
			batch = make([]model.Filing, 0, size)
			clear(seen)
			return nil
		}
		for row := range tbl.Rows {
			f, ok := parser.parse(row)
			if !ok {
				res.Skipped++
				continue
			}
			// A statement may not touch the same key twice: the later row wins.
			if i, dup := seen[f.ID]; dup {
				batch[i] = f
				continue
			}
			seen[f.ID] = len(batch)
			batch = append(batch, f)
			if len(batch) >= size {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := tbl.Err(); err != nil {
			return eris.Wrap(err, "ingest: read ita rows")
		}
		return flush()
	})

	g.Go(func() error {
		for batch := range batches {
			n, err := l.Sink.UpsertFilings(gctx, batch)
			if err != nil {
				return eris.Wrapf(err, "ingest: write batch %d", res.Batches+1)
			}
			res.Rows += n
			res.Batches++
			log.Info("ingest: batch written", zap.Int("batch", res.Batches), zap.Int64("rows", n))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := l.Sink.Refresh(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: refresh views")
	}
	res.Duration = time.Since(start)
	log.Info("ingest: ita import complete",
		zap.Int64("rows", res.Rows),
		zap.Int("skipped", res.Skipped),
		zap.Int("batches", res.Batches),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
