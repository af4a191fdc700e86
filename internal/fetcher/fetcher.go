// Package fetcher retrieves OSHA ITA exports and NAICS seed files from HTTP
// or local paths and streams their rows from CSV, XLSX, or ZIP containers.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// IsRemote reports whether source is an http(s) URL rather than a local path.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Localize returns a local file path for source. URLs are downloaded into
// dir (the OS temp dir when empty) and cleanup removes the copy; local paths
// are returned as is with a no-op cleanup.
func Localize(ctx context.Context, f Fetcher, source, dir string) (string, func(), error) {
	if !IsRemote(source) {
		if _, err := os.Stat(source); err != nil {
			return "", nil, eris.Wrapf(err, "fetcher: stat %s", source)
		}
		return source, func() {}, nil
	}

	tmp, err := os.MkdirTemp(dir, "safety-import-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "fetcher: create temp dir")
	}
	cleanup := func() { os.RemoveAll(tmp) } //nolint:errcheck

	u, _ := url.Parse(source)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}
	dest := filepath.Join(tmp, name)
	if _, err := f.DownloadToFile(ctx, source, dest); err != nil {
		cleanup()
		return "", nil, err
	}
	return dest, cleanup, nil
}

// Ext returns the lower-cased extension of a path or URL, without the dot.
func Ext(source string) string {
	if IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			source = u.Path
		}
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(source)), ".")
}
