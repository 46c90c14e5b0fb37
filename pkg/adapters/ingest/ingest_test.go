package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/services"
)

func collect() (*[]domain.RawRecord, func(context.Context, []domain.RawRecord) error) {
	var out []domain.RawRecord
	return &out, func(_ context.Context, batch []domain.RawRecord) error {
		out = append(out, batch...)
		return nil
	}
}

func TestCsvStopIngestor(t *testing.T) {
	input := "DateStop, timestop,race,age,sex,pf_hands\n" +
		"2006-01-15,1430,W,25,F,Y\n" +
		"2006-01-16,830,NA,,M\n" +
		"2006-01-17,0900,B,40,M,N\n"

	got, sink := collect()
	res, err := NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(input), 2006)
	require.NoError(t, err)

	assert.Equal(t, 2006, res.Year)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "line 3")

	require.Len(t, *got, 2)
	first := (*got)[0]
	assert.Equal(t, 2006, first.SourceYear)
	assert.Equal(t, domain.Text("2006-01-15"), first.Field("datestop"))
	assert.Equal(t, domain.Text("1430"), first.Field("timestop"))
	assert.Equal(t, domain.Text("Y"), first.Field("pf_hands"))
}

func TestCsvStopIngestor_NAValuesAndEmptyCells(t *testing.T) {
	input := "race,age,sex\nNA,,M\n"

	got, sink := collect()
	_, err := NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(input), 2008)
	require.NoError(t, err)
	require.Len(t, *got, 1)

	rec := (*got)[0]
	assert.False(t, rec.Field("race").Present, "NA literal is missing")
	assert.False(t, rec.Field("age").Present, "blank cell is missing")

	got, sink = collect()
	_, err = NewCsvStopIngestor(sink, WithNAValues("M")).IngestStream(context.Background(), strings.NewReader(input), 2008)
	require.NoError(t, err)
	rec = (*got)[0]
	assert.Equal(t, domain.Text("NA"), rec.Field("race"))
	assert.Equal(t, domain.Text(""), rec.Field("age"), "blank cell is kept when not configured as NA")
	assert.False(t, rec.Field("sex").Present)
}

func TestCsvStopIngestor_BlankSexIsMissingFemale(t *testing.T) {
	input := `datestop,race,sex
2006-03-01,W,
2006-03-02,B,M
`

	got, sink := collect()
	_, err := NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(input), 2006)
	require.NoError(t, err)

	out, err := services.NewYearRecoder().Recode(*got, 2006)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Female)
	require.NotNil(t, out[1].Female)
	assert.False(t, *out[1].Female)
}

func TestCsvStopIngestor_Batches(t *testing.T) {
	var batches int
	sink := func(_ context.Context, batch []domain.RawRecord) error {
		batches++
		assert.LessOrEqual(t, len(batch), 2)
		return nil
	}
	input := "race\nW\nB\nQ\nA\nZ\n"

	res, err := NewCsvStopIngestor(sink, WithBatchSize(2)).IngestStream(context.Background(), strings.NewReader(input), 2009)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Success)
	assert.Equal(t, 3, batches)
}

func TestCsvStopIngestor_SinkError(t *testing.T) {
	boom := errors.New("boom")
	sink := func(context.Context, []domain.RawRecord) error { return boom }

	_, err := NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader("race\nW\n"), 2009)
	assert.ErrorIs(t, err, boom)
}

func TestCsvStopIngestor_EmptyAndMalformed(t *testing.T) {
	_, sink := collect()
	res, err := NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(""), 2010)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	_, err = NewCsvStopIngestor(sink).IngestStream(context.Background(), strings.NewReader("race\n\"W\n"), 2010)
	assert.Error(t, err)
}

func TestJsonStopIngestor(t *testing.T) {
	input := ` [
		{"datestop": "01152007", "timestop": 830, "race": "W", "age": null, "xcoord": 1012345.50, "frisked": true},
		{"race": "NA", "age": "45"},
		{"race": {"code": "B"}}
	]`

	got, sink := collect()
	res, err := NewJsonStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(input), 2007)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)

	require.Len(t, *got, 2)
	first := (*got)[0]
	assert.Equal(t, domain.Text("830"), first.Field("timestop"))
	assert.Equal(t, domain.Text("1012345.50"), first.Field("xcoord"), "numbers keep their literal text")
	assert.Equal(t, domain.Text("true"), first.Field("frisked"))
	assert.False(t, first.Field("age").Present)
	assert.False(t, (*got)[1].Field("race").Present)
}

func TestJsonStopIngestor_SingleObject(t *testing.T) {
	got, sink := collect()
	res, err := NewJsonStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(`{"race":"Q"}`), 2011)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, domain.Text("Q"), (*got)[0].Field("race"))

	_, err = NewJsonStopIngestor(sink).IngestStream(context.Background(), strings.NewReader(`"x"`), 2011)
	assert.Error(t, err)
}

func TestPartitionLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqf-2006.csv"), []byte("race,age\nW,25\nQ,999\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqf-2007.csv"), []byte("race,age\nB,30\n"), 0o644))

	loader := NewPartitionLoader(dir, "sqf-%d.csv")
	parts, results, err := loader.Load(context.Background(), []int{2006, 2007})
	require.NoError(t, err)
	assert.Len(t, parts[2006], 2)
	assert.Len(t, parts[2007], 1)
	assert.Equal(t, 2007, parts[2007][0].SourceYear)
	require.Len(t, results, 2)
	assert.Equal(t, 2006, results[0].Year)

	_, _, err = loader.Load(context.Background(), []int{2006, 2008})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPartitionLoader_JSONByExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stops_2009.json"), []byte(`[{"race":"A"}]`), 0o644))

	recs, res, err := NewPartitionLoader(dir, "stops_%d.json").LoadYear(context.Background(), 2009)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, domain.Text("A"), recs[0].Field("race"))
}
