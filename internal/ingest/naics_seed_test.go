package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
)

func TestNAICSLoader_Builtin(t *testing.T) {
	sink := &memSink{}
	res, err := (&NAICSLoader{Sink: sink}).Load(context.Background(), BuiltinSectors)
	require.NoError(t, err)
	assert.Equal(t, int64(len(naics.Sectors())), res.Rows)
	assert.Len(t, sink.naics, len(naics.Sectors()))
}

func TestNAICSLoader_YAMLList(t *testing.T) {
	path := writeFile(t, "naics.yaml", `
- code: "31"
  description: Manufacturing
- code: "311.0"
  description: Food Manufacturing
- code: "31-33"
  description: Manufacturing range
`)
	sink := &memSink{}
	res, err := (&NAICSLoader{Sink: sink}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []model.NaicsNode{
		{Code: "31", Description: "Manufacturing"},
		{Code: "311", Description: "Food Manufacturing"},
	}, sink.naics)
}

func TestNAICSLoader_YAMLMap(t *testing.T) {
	path := writeFile(t, "naics.yml", `
"42": Wholesale Trade
"423": Merchant Wholesalers, Durable Goods
`)
	sink := &memSink{}
	_, err := (&NAICSLoader{Sink: sink}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.NaicsNode{
		{Code: "42", Description: "Wholesale Trade"},
		{Code: "423", Description: "Merchant Wholesalers, Durable Goods"},
	}, sink.naics)
}

func TestNAICSLoader_CensusCSV(t *testing.T) {
	path := writeFile(t, "naics.csv",
		"Seq. No.,2022 NAICS US Code,2022 NAICS US Title\n"+
			"1,11,Agriculture\n"+
			"2,111,Crop Production\n"+
			"3,111,Crop Production (revised)\n"+
			"4,,\n")
	sink := &memSink{}
	res, err := (&NAICSLoader{Sink: sink}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows)
	assert.Equal(t, []model.NaicsNode{
		{Code: "11", Description: "Agriculture"},
		{Code: "111", Description: "Crop Production (revised)"},
	}, sink.naics)
}

func TestNAICSLoader_NoCodeColumn(t *testing.T) {
	path := writeFile(t, "naics.csv", "name\nx\n")
	_, err := (&NAICSLoader{Sink: &memSink{}}).Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code column")
}
