package recoders

import "github.com/renjie/prism-stops/pkg/core/domain"

var raceCodes = map[string]domain.Race{
	"W": domain.RaceWhite,
	"B": domain.RaceBlack,
	"P": domain.RaceHispanic,
	"Q": domain.RaceHispanic,
	"A": domain.RaceAsian,
	"I": domain.RaceOther,
	"Z": domain.RaceOther,
}

// RecodeRace maps a single-character race code to its canonical category.
// Matching is exact and case-sensitive; any other value is missing.
func RecodeRace(code domain.Field) *domain.Race {
	if !code.Present {
		return nil
	}
	r, ok := raceCodes[code.Text]
	if !ok {
		return nil
	}
	return &r
}
