package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, tbl *Table) [][]string {
	t.Helper()
	var out [][]string
	for row := range tbl.Rows {
		out = append(out, row)
	}
	require.NoError(t, tbl.Err())
	return out
}

func TestOpenTable_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ita.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,company_name\n1,Caf\xe9 Co\n"), 0o644))

	tbl, err := OpenTable(context.Background(), path, TableOptions{Encoding: Latin1})
	require.NoError(t, err)
	defer tbl.Close() //nolint:errcheck

	assert.Equal(t, []string{"id", "company_name"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "Café Co"}}, drain(t, tbl))
}

func TestOpenTable_XLSXInZip(t *testing.T) {
	xlsxPath := createTestXLSX(t, t.TempDir(), xlsxSheet{"Sheet1", [][]string{
		{"code", "description"}, {"11", "Agriculture"},
	}})
	data, err := os.ReadFile(xlsxPath)
	require.NoError(t, err)
	zipPath := createTestZIP(t, [2]string{"naics.xlsx", string(data)})

	tmp := t.TempDir()
	tbl, err := OpenTable(context.Background(), zipPath, TableOptions{TempDir: tmp})
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "description"}, tbl.Header)
	assert.Equal(t, [][]string{{"11", "Agriculture"}}, drain(t, tbl))

	require.NoError(t, tbl.Close())
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "extracted files are removed on close")
}

func TestOpenTable_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := OpenTable(context.Background(), path, TableOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestOpenTable_Unsupported(t *testing.T) {
	_, err := OpenTable(context.Background(), "data.json", TableOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type "json"`)
}

func TestLocalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id\n1\n")) //nolint:errcheck
	}))
	defer srv.Close()

	tmp := t.TempDir()
	path, cleanup, err := Localize(context.Background(), newTestFetcher(), srv.URL+"/exports/ita_2024.csv", tmp)
	require.NoError(t, err)
	assert.Equal(t, "ita_2024.csv", filepath.Base(path))
	_, err = os.Stat(path)
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalize_LocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	got, cleanup, err := Localize(context.Background(), nil, path, "")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, path, got)

	_, _, err = Localize(context.Background(), nil, filepath.Join(t.TempDir(), "missing.csv"), "")
	require.Error(t, err)
}

func TestExtAndIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://www.osha.gov/file.zip"))
	assert.False(t, IsRemote("/tmp/file.zip"))
	assert.False(t, IsRemote("C:/data/file.zip"))
	assert.Equal(t, "zip", Ext("https://www.osha.gov/file.ZIP?x=1"))
	assert.Equal(t, "csv", Ext("data/ita.csv"))
	assert.Equal(t, "", Ext("noext"))
}
