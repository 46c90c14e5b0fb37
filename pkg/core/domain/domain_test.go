package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPolicy(t *testing.T) {
	p := DefaultFormatPolicy()
	assert.Equal(t, []int{2006, 2007, 2008, 2009, 2010, 2011, 2012}, p.Years())

	f, err := p.Resolve(2006)
	require.NoError(t, err)
	assert.Equal(t, DateFormatYMD, f)

	f, err = p.Resolve(2011)
	require.NoError(t, err)
	assert.Equal(t, DateFormatMDY, f)

	_, err = p.Resolve(2013)
	assert.ErrorIs(t, err, ErrNoFormatPolicy)
	assert.Contains(t, err.Error(), "2013")
}

func TestParseDateFormat(t *testing.T) {
	f, err := ParseDateFormat(" mdy ")
	require.NoError(t, err)
	assert.Equal(t, DateFormatMDY, f)

	_, err = ParseDateFormat("DMY")
	assert.Error(t, err)
}

func TestRawRecordField(t *testing.T) {
	r := RawRecord{Fields: map[string]string{"race": "W", "age": ""}}

	assert.Equal(t, Field{Text: "W", Present: true}, r.Field("race"))
	assert.Equal(t, Field{Text: "", Present: true}, r.Field("age"))
	assert.Equal(t, Field{}, r.Field("sex"))
	assert.Equal(t, Field{}, RawRecord{}.Field("sex"))
}

func TestNewTable(t *testing.T) {
	d := time.Date(2006, 1, 15, 0, 0, 0, 0, time.UTC)
	race := RaceWhite
	age := 25
	female := true
	records := []StandardRecord{
		{ID: "2006-1", Date: &d, Year: 2006, Race: &race, Female: &female, Age: &age, PoliceForce: true},
		{ID: "2006-2", Year: 2006},
	}

	table := NewTable(records)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, len(StandardSchema()), table.ColumnCount())

	names := make([]string, 0, table.ColumnCount())
	for _, c := range table.Columns() {
		names = append(names, c.Name)
	}
	assert.Equal(t, StandardColumnNames(), names)

	col, ok := table.Column(ColRace)
	require.True(t, ok)
	assert.Equal(t, KindCategory, col.Kind)
	assert.Equal(t, RaceLevels(), col.Levels)
	assert.Equal(t, []any{"White", nil}, col.Values)
	assert.InDelta(t, 0.5, col.MissingRate(), 1e-9)

	col, _ = table.Column(ColAge)
	assert.Equal(t, []any{int64(25), nil}, col.Values)

	col, _ = table.Column(ColPoliceForce)
	assert.Equal(t, []any{true, false}, col.Values)

	col, _ = table.Column(ColDate)
	assert.Equal(t, []any{d, nil}, col.Values)

	_, ok = table.Column("nope")
	assert.False(t, ok)
}

func TestTableAddColumnReplaces(t *testing.T) {
	table := NewEmptyTable(
		&Column{ColumnSchema: ColumnSchema{Name: "a", Kind: KindText}, Values: []any{"x"}},
		&Column{ColumnSchema: ColumnSchema{Name: "b", Kind: KindText}, Values: []any{"y"}},
	)
	table.AddColumn(&Column{ColumnSchema: ColumnSchema{Name: "a", Kind: KindInteger}, Values: []any{int64(1)}})

	assert.Equal(t, 2, table.ColumnCount())
	col, _ := table.Column("a")
	assert.Equal(t, KindInteger, col.Kind)
	assert.Equal(t, "a", table.Columns()[0].Name)

	var empty Table
	assert.Equal(t, 0, empty.RowCount())
	empty.AddColumn(&Column{ColumnSchema: ColumnSchema{Name: "z"}})
	assert.Equal(t, 1, empty.ColumnCount())
}

func TestRunInfoContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	info := NewRunInfo("", "/data")
	assert.Equal(t, "SYSTEM", info.Operator)
	assert.NotEmpty(t, info.RunID)

	got, ok := FromContext(NewContext(context.Background(), info))
	require.True(t, ok)
	assert.Equal(t, info, got)
	assert.NotEqual(t, info.RunID, NewRunInfo("x", "").RunID)
}

func TestReportIssueNames(t *testing.T) {
	r := ValidationReport{Issues: map[string]Issue{"b": {}, "a": {}}}
	assert.ElementsMatch(t, []string{"a", "b"}, r.IssueNames())
}
