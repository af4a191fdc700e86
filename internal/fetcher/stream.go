package fetcher

import "context"

// rowStream is the producing side of a Table. At most one error is sent.
type rowStream struct {
	rows chan []string
	errs chan error
}

func newRowStream() rowStream {
	return rowStream{rows: make(chan []string, 64), errs: make(chan error, 1)}
}

// send hands a row to the consumer. It returns false once ctx is done.
func (s rowStream) send(ctx context.Context, row []string) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case s.rows <- row:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s rowStream) done() {
	close(s.rows)
	close(s.errs)
}
