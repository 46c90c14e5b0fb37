package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/services/checks"
)

func ptr[T any](v T) *T { return &v }

func conformingRecords() []domain.StandardRecord {
	races := []domain.Race{domain.RaceWhite, domain.RaceBlack, domain.RaceHispanic, domain.RaceAsian}
	out := make([]domain.StandardRecord, 0, len(races))
	for i, race := range races {
		d := time.Date(2008, 5, i+1, 0, 0, 0, 0, time.UTC)
		out = append(out, domain.StandardRecord{
			ID:       "2008-" + string(rune('1'+i)),
			Date:     &d,
			Time:     &d,
			Year:     2008,
			Race:     ptr(race),
			Female:   ptr(i%2 == 0),
			Age:      ptr(20 + i),
			Precinct: ptr(40),
			XCoord:   ptr(1000.5),
			YCoord:   ptr(2000.5),
		})
	}
	return out
}

func TestValidator_ConformingTablePasses(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	v := NewValidator(WithValidatorLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return fixed }))

	info := domain.NewRunInfo("tester", "data")
	report, err := v.Validate(domain.NewContext(context.Background(), info), domain.NewTable(conformingRecords()))
	require.NoError(t, err)

	assert.True(t, report.Passed)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 4, report.RowCount)
	assert.Equal(t, 11, report.ColumnCount)
	assert.Equal(t, map[int]int{2008: 4}, report.YearCounts)
	assert.Equal(t, info.RunID, report.RunID)
	assert.Equal(t, fixed.UTC(), report.CreatedAt)
}

func TestValidator_DuplicateIDs(t *testing.T) {
	records := conformingRecords()
	records[2].ID = records[0].ID
	records[3].ID = records[0].ID

	report, err := NewValidator().Validate(context.Background(), domain.NewTable(records))
	require.NoError(t, err)
	assert.False(t, report.Passed)
	require.Contains(t, report.Issues, checks.IssueDuplicateIDs)
	assert.Equal(t, 2, report.Issues[checks.IssueDuplicateIDs].Count)
	assert.Len(t, report.Issues, 1)
}

func TestValidator_AllChecksRunWithoutShortCircuit(t *testing.T) {
	table := domain.NewEmptyTable(
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColID, Kind: domain.KindText}, Values: []any{"a", "a", "b"}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColYear, Kind: domain.KindInteger}, Values: []any{int64(2001), int64(2006), int64(2020)}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColAge, Kind: domain.KindInteger}, Values: []any{nil, nil, int64(150)}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColRace, Kind: domain.KindText}, Values: []any{"W", nil, nil}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColFemale, Kind: domain.KindText}, Values: []any{"F", "M", nil}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColXCoord, Kind: domain.KindNumeric}, Values: []any{nil, nil, 1.0}},
		&domain.Column{ColumnSchema: domain.ColumnSchema{Name: domain.ColYCoord, Kind: domain.KindNumeric}, Values: []any{nil, nil, nil}},
	)

	report, err := NewValidator(WithCheckConcurrency(2)).Validate(context.Background(), table)
	require.NoError(t, err)
	assert.False(t, report.Passed)

	for _, name := range []string{
		checks.IssueMissingColumns,
		checks.IssueInvalidYears,
		checks.IssueInvalidAges,
		checks.IssueHighAgeMissing,
		checks.IssueRaceNotFactor,
		checks.IssueHighRaceMissing,
		checks.IssueFemaleNotLogical,
		checks.IssueHighXCoordMissing,
		checks.IssueHighYCoordMissing,
		checks.IssueDuplicateIDs,
	} {
		assert.Contains(t, report.Issues, name)
	}
	assert.Equal(t, 2, report.Issues[checks.IssueInvalidYears].Count)
	assert.Equal(t, map[int]int{2001: 1, 2006: 1, 2020: 1}, report.YearCounts)
}

func TestValidator_NilTable(t *testing.T) {
	_, err := NewValidator().Validate(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNilTable)
}

func TestValidator_EmptyTable(t *testing.T) {
	report, err := NewValidator().Validate(context.Background(), domain.NewTable(nil))
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, 0, report.RowCount)
}

func TestValidator_CheckSpecs(t *testing.T) {
	records := conformingRecords()
	records[0].Age = ptr(80)

	v := NewValidator(WithCheckSpecs(domain.CheckSpec{
		Type:       domain.CheckTypeRange,
		Column:     domain.ColAge,
		Issue:      "too_old",
		Parameters: map[string]any{"min": 0, "max": 65},
	}))
	report, err := v.Validate(context.Background(), domain.NewTable(records))
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Issue{"too_old": report.Issues["too_old"]}, report.Issues)
	assert.Equal(t, 1, report.Issues["too_old"].Count)

	_, err = NewValidator(WithCheckSpecs(domain.CheckSpec{Type: "BOGUS"})).Validate(context.Background(), domain.NewTable(records))
	assert.ErrorIs(t, err, domain.ErrUnknownCheckType)
}

func TestValidator_ObservesReport(t *testing.T) {
	obs := &recordingObserver{}
	_, err := NewValidator(WithValidatorObserver(obs)).Validate(context.Background(), domain.NewTable(conformingRecords()))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.reports)
}

func TestValidator_RunsEveryCheckRegardlessOfContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := conformingRecords()
	records[1].ID = records[0].ID
	report, err := NewValidator(WithCheckConcurrency(1)).Validate(ctx, domain.NewTable(records))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Issues[checks.IssueDuplicateIDs].Count)
}
