package ingest

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/safety-index/internal/fetcher"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/store"
)

// BuiltinSectors selects the embedded two-digit sector list as a seed source.
const BuiltinSectors = "builtin"

// NAICSLoader seeds the taxonomy table.
type NAICSLoader struct {
	Sink    store.Writer
	Fetcher fetcher.Fetcher
	TempDir string
}

// naicsEntry is one YAML seed item.
type naicsEntry struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// Load reads source (builtin, .yaml/.yml, or a .csv/.xlsx/.zip table) and
// upserts its entries. Codes are normalized; entries whose code is not
// purely numeric, such as "31-33", are skipped.
func (l *NAICSLoader) Load(ctx context.Context, source string) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.New()}

	var raw []model.NaicsNode
	switch {
	case source == BuiltinSectors:
		raw = naics.Sectors()
	default:
		path, cleanup, err := fetcher.Localize(ctx, l.Fetcher, source, l.TempDir)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: fetch naics source")
		}
		defer cleanup()

		switch fetcher.Ext(path) {
		case "yaml", "yml":
			raw, err = readNAICSYAML(path)
		default:
			raw, err = l.readNAICSTable(ctx, path)
		}
		if err != nil {
			return nil, err
		}
	}

	nodes := make([]model.NaicsNode, 0, len(raw))
	pos := make(map[string]int, len(raw))
	for _, n := range raw {
		code := naics.NormalizeCode(n.Code)
		if code == "" {
			res.Skipped++
			continue
		}
		n.Code = code
		if i, dup := pos[code]; dup {
			nodes[i] = n
			continue
		}
		pos[code] = len(nodes)
		nodes = append(nodes, n)
	}

	n, err := l.Sink.UpsertNAICS(ctx, nodes)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: write naics")
	}
	res.Rows = n
	res.Batches = 1
	res.Duration = time.Since(start)
	zap.L().Info("ingest: naics seed complete",
		zap.String("source", source),
		zap.Int64("rows", n),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// readNAICSYAML accepts either a list of {code, description} items or a
// code → description mapping.
func readNAICSYAML(path string) ([]model.NaicsNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var list []naicsEntry
	if err := yaml.Unmarshal(data, &list); err == nil {
		out := make([]model.NaicsNode, 0, len(list))
		for _, e := range list {
			out = append(out, model.NaicsNode{Code: e.Code, Description: e.Description})
		}
		return out, nil
	}

	var byCode map[string]string
	if err := yaml.Unmarshal(data, &byCode); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse naics yaml %s", path)
	}
	out := make([]model.NaicsNode, 0, len(byCode))
	for code, desc := range byCode {
		out = append(out, model.NaicsNode{Code: code, Description: desc})
	}
	return out, nil
}

func (l *NAICSLoader) readNAICSTable(ctx context.Context, path string) ([]model.NaicsNode, error) {
	tbl, err := fetcher.OpenTable(ctx, path, fetcher.TableOptions{TempDir: l.TempDir})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open naics table")
	}
	defer tbl.Close() //nolint:errcheck

	cols := newColumns(tbl.Header)
	codeIdx, ok := cols.index("code", "naics_code", "2022 NAICS US Code", "2017 NAICS US Code")
	if !ok {
		return nil, eris.New("ingest: naics header has no code column")
	}
	descIdx, descOK := cols.index("description", "title", "2022 NAICS US Title", "2017 NAICS US Title", "industry_description")

	var out []model.NaicsNode
	for row := range tbl.Rows {
		code := cell(row, codeIdx, true)
		if code == nil {
			continue
		}
		n := model.NaicsNode{Code: *code}
		if d := cell(row, descIdx, descOK); d != nil {
			n.Description = *d
		}
		out = append(out, n)
	}
	if err := tbl.Err(); err != nil {
		return nil, eris.Wrap(err, "ingest: read naics rows")
	}
	return out, nil
}
