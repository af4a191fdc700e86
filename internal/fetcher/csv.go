package fetcher

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Latin1 is the encoding of the OSHA ITA CSV exports.
var Latin1 encoding.Encoding = charmap.ISO8859_1

// StreamCSV streams the records of r, decoded from enc (nil for UTF-8).
// Fields are trimmed, ragged rows and stray quotes are tolerated, and a
// leading byte order mark is dropped.
func StreamCSV(ctx context.Context, r io.Reader, enc encoding.Encoding) (<-chan []string, <-chan error) {
	s := newRowStream()

	go func() {
		defer s.done()

		if enc != nil {
			r = enc.NewDecoder().Reader(r)
		}
		reader := csv.NewReader(r)
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		for n := 0; ; n++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.errs <- eris.Wrapf(err, "csv: read record %d", n+1)
				return
			}
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
			if n == 0 && len(record) > 0 {
				record[0] = trimBOM(record[0])
			}
			if !s.send(ctx, record) {
				s.errs <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return s.rows, s.errs
}
