package recoders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

func TestRecodeRace(t *testing.T) {
	cases := map[string]domain.Race{
		"W": domain.RaceWhite,
		"B": domain.RaceBlack,
		"P": domain.RaceHispanic,
		"Q": domain.RaceHispanic,
		"A": domain.RaceAsian,
		"I": domain.RaceOther,
		"Z": domain.RaceOther,
	}
	for code, want := range cases {
		got := RecodeRace(domain.Text(code))
		require.NotNil(t, got, "code %q", code)
		assert.Equal(t, want, *got, "code %q", code)
	}
}

func TestRecodeRace_UnknownIsMissing(t *testing.T) {
	for _, code := range []string{"X", "", "w", "WW", " W", "U"} {
		assert.Nil(t, RecodeRace(domain.Text(code)), "code %q", code)
	}
	assert.Nil(t, RecodeRace(domain.Field{}))
}

func TestRecodeRace_OnlyCanonicalLevels(t *testing.T) {
	levels := map[string]bool{}
	for _, l := range domain.RaceLevels() {
		levels[l] = true
	}
	for code := range raceCodes {
		r := RecodeRace(domain.Text(code))
		require.NotNil(t, r)
		assert.True(t, levels[string(*r)], "%q leaked non-canonical %q", code, *r)
	}
}
