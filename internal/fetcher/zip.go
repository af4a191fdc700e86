package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// maxEntryBytes caps a single extracted file.
const maxEntryBytes = 4 << 30

// ExtractTable copies the largest entry of the archive whose extension is one
// of exts into destDir and returns its path. Entries are written flat under
// destDir by base name; macOS resource forks and dot files are ignored.
func ExtractTable(zipPath, destDir string, exts ...string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "zip: open %s", zipPath)
	}
	defer r.Close() //nolint:errcheck

	var best *zip.File
	for _, f := range r.File {
		base := filepath.Base(f.Name)
		if f.FileInfo().IsDir() || strings.HasPrefix(base, ".") || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if !slices.Contains(exts, Ext(base)) {
			continue
		}
		if best == nil || f.UncompressedSize64 > best.UncompressedSize64 {
			best = f
		}
	}
	if best == nil {
		return "", eris.Errorf("zip: no %s file in %s", strings.Join(exts, "/"), filepath.Base(zipPath))
	}
	return copyEntry(best, filepath.Join(destDir, filepath.Base(best.Name)))
}

func copyEntry(f *zip.File, dest string) (string, error) {
	if f.UncompressedSize64 > maxEntryBytes {
		return "", eris.Errorf("zip: %s is larger than %d bytes", f.Name, int64(maxEntryBytes))
	}
	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrapf(err, "zip: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxEntryBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", eris.Wrapf(err, "zip: extract %s", f.Name)
	}
	if n > maxEntryBytes {
		return "", eris.Errorf("zip: %s is larger than %d bytes", f.Name, int64(maxEntryBytes))
	}
	return dest, nil
}
