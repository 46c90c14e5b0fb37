package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
	"github.com/renjie/prism-stops/pkg/core/services/checks"
)

func TestCreateCheck_BuiltIns(t *testing.T) {
	f := NewCheckFactory()

	tests := []struct {
		name string
		spec domain.CheckSpec
		want ports.Check
	}{
		{
			name: "range with yaml ints",
			spec: domain.CheckSpec{Type: domain.CheckTypeRange, Column: "age", Parameters: map[string]any{"min": 0, "max": 100}},
			want: &checks.RangeCheck{Column: "age", Min: 0, Max: 100, Issue: "invalid_age"},
		},
		{
			name: "missing rate",
			spec: domain.CheckSpec{Type: domain.CheckTypeMissingRate, Column: "age", Issue: "high_age_missing", Parameters: map[string]any{"threshold": 0.2}},
			want: &checks.MissingRateCheck{Column: "age", Threshold: 0.2, Issue: "high_age_missing"},
		},
		{
			name: "schema defaults to the standard columns",
			spec: domain.CheckSpec{Type: domain.CheckTypeSchema},
			want: &checks.SchemaCheck{Required: domain.StandardColumnNames(), Issue: checks.IssueMissingColumns},
		},
		{
			name: "category with explicit levels",
			spec: domain.CheckSpec{Type: domain.CheckTypeCategory, Column: "race", Parameters: map[string]any{"levels": []any{"A", "B"}}},
			want: &checks.CategoryCheck{Column: "race", Levels: []string{"A", "B"}, NotCategoricalKey: "race_not_factor", UnexpectedKey: "unexpected_race_levels"},
		},
		{
			name: "boolean",
			spec: domain.CheckSpec{Type: domain.CheckTypeBoolean, Column: "female"},
			want: &checks.BooleanCheck{Column: "female", Issue: "female_not_logical"},
		},
		{
			name: "unique",
			spec: domain.CheckSpec{Type: domain.CheckTypeUnique, Column: "id"},
			want: &checks.UniqueCheck{Column: "id", Issue: "duplicate_ids"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.CreateCheck(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateCheck_Errors(t *testing.T) {
	f := NewCheckFactory()

	_, err := f.CreateCheck(domain.CheckSpec{Type: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrUnknownCheckType)

	_, err = f.CreateCheck(domain.CheckSpec{Type: domain.CheckTypeRange, Column: "age", Parameters: map[string]any{"min": "0"}})
	assert.Error(t, err)

	_, err = f.CreateCheck(domain.CheckSpec{Type: domain.CheckTypeRange, Column: "age", Parameters: map[string]any{"min": 5, "max": 1}})
	assert.Error(t, err)

	_, err = f.CreateCheck(domain.CheckSpec{Type: domain.CheckTypeMissingRate, Column: "age", Parameters: map[string]any{"threshold": 1.5}})
	assert.Error(t, err)

	_, err = f.CreateCheck(domain.CheckSpec{Type: domain.CheckTypeCategory, Column: "race", Parameters: map[string]any{"levels": []any{1}}})
	assert.Error(t, err)
}

func TestRegister_OverridesBuilder(t *testing.T) {
	f := NewCheckFactory()
	custom := &checks.UniqueCheck{Column: "x", Issue: "custom"}
	f.Register(domain.CheckTypeUnique, func(domain.CheckSpec) (ports.Check, error) { return custom, nil })

	got, err := f.CreateCheck(domain.CheckSpec{Type: domain.CheckTypeUnique, Column: "id"})
	require.NoError(t, err)
	assert.Same(t, custom, got)
}

func TestNewBattery(t *testing.T) {
	battery, err := GetCheckFactory().NewBattery([]domain.CheckSpec{
		{Type: domain.CheckTypeSchema},
		{Type: domain.CheckTypeUnique, Column: "id"},
	})
	require.NoError(t, err)
	assert.Len(t, battery, 2)

	_, err = GetCheckFactory().NewBattery([]domain.CheckSpec{{Type: domain.CheckTypeSchema}, {Type: "BAD"}})
	assert.ErrorIs(t, err, domain.ErrUnknownCheckType)
	assert.Contains(t, err.Error(), "check 1")
}
