package fetcher

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
)

// TableOptions configures OpenTable.
type TableOptions struct {
	// Encoding of CSV input; nil means UTF-8. Ignored for XLSX.
	Encoding encoding.Encoding
	// Sheet names the XLSX worksheet; empty picks the first with rows.
	Sheet string
	// TempDir receives files extracted from archives.
	TempDir string
}

// Table is a tabular file being streamed: the header row has been read and
// the remaining rows arrive on Rows. Cancel the context passed to OpenTable
// to stop early, then Close.
type Table struct {
	Header []string
	Rows   <-chan []string
	Errs   <-chan error

	cleanup []func()
}

// OpenTable streams a .csv, .xlsx, or a .zip holding one of those.
func OpenTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	t := &Table{}
	switch Ext(path) {
	case "zip":
		dir, err := os.MkdirTemp(opts.TempDir, "safety-zip-*")
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create extract dir")
		}
		inner, err := ExtractTable(path, dir, "csv", "xlsx")
		if err != nil {
			os.RemoveAll(dir) //nolint:errcheck
			return nil, err
		}
		nested, err := OpenTable(ctx, inner, opts)
		if err != nil {
			os.RemoveAll(dir) //nolint:errcheck
			return nil, err
		}
		nested.cleanup = append(nested.cleanup, func() { os.RemoveAll(dir) }) //nolint:errcheck
		return nested, nil
	case "csv", "txt":
		file, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", path)
		}
		t.cleanup = append(t.cleanup, func() { file.Close() }) //nolint:errcheck
		t.Rows, t.Errs = StreamCSV(ctx, file, opts.Encoding)
	case "xlsx":
		t.Rows, t.Errs = StreamXLSX(ctx, path, opts.Sheet)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", Ext(path))
	}

	header, ok := <-t.Rows
	if !ok {
		err := <-t.Errs
		t.Close() //nolint:errcheck
		if err != nil {
			return nil, err
		}
		return nil, eris.Errorf("fetcher: %s has no header row", path)
	}
	t.Header = header
	return t, nil
}

// Err returns the stream error, if any. Call after Rows is drained.
func (t *Table) Err() error {
	return <-t.Errs
}

// Close releases the file handles and extracted files.
func (t *Table) Close() error {
	for i := len(t.cleanup) - 1; i >= 0; i-- {
		t.cleanup[i]()
	}
	t.cleanup = nil
	return nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
