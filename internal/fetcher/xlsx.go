package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// StreamXLSX streams the rows of one worksheet: the named one, or the first
// sheet holding any rows when sheet is empty. Cells are rendered with their
// number format, trailing empty cells are dropped and blank rows skipped.
func StreamXLSX(ctx context.Context, path, sheet string) (<-chan []string, <-chan error) {
	s := newRowStream()

	go func() {
		defer s.done()

		f, err := xlsx.OpenFile(path)
		if err != nil {
			s.errs <- eris.Wrapf(err, "xlsx: open %s", path)
			return
		}
		ws, err := pickSheet(f, sheet)
		if err != nil {
			s.errs <- err
			return
		}

		for _, row := range ws.Rows {
			cells := cellValues(row)
			if len(cells) == 0 {
				continue
			}
			if !s.send(ctx, cells) {
				s.errs <- eris.Wrap(ctx.Err(), "xlsx: context cancelled")
				return
			}
		}
	}()

	return s.rows, s.errs
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		ws, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return ws, nil
	}
	for _, ws := range f.Sheets {
		if len(ws.Rows) > 0 {
			return ws, nil
		}
	}
	return nil, eris.New("xlsx: workbook has no rows")
}

func cellValues(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	out := make([]string, len(row.Cells))
	last := -1
	for i, c := range row.Cells {
		v, err := c.FormattedValue()
		if err != nil {
			v = c.Value
		}
		out[i] = v
		if v != "" {
			last = i
		}
	}
	return out[:last+1]
}
