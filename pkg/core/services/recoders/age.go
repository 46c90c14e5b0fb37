package recoders

import (
	"strings"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

const (
	AgeMin = 0
	AgeMax = 100
)

// ageSentinels are the literal "unknown" codes used by the source.
// 99 is deliberately absent: it is a plausible age and stays in range.
var ageSentinels = map[int]struct{}{
	999: {},
	377: {},
}

// CleanAge coerces a raw age to an integer in [AgeMin, AgeMax].
// Steps: integer coercion, sentinel scrub, range filter. The reason is empty
// when the value survived or when there was nothing to clean.
func CleanAge(raw domain.Field) (*int, domain.DegradationReason) {
	if !raw.Present || strings.TrimSpace(raw.Text) == "" {
		return nil, ""
	}
	age, ok := ParseInteger(raw.Text)
	if !ok {
		return nil, domain.ReasonUnparseable
	}
	if _, ok := ageSentinels[age]; ok {
		return nil, domain.ReasonSentinel
	}
	if age < AgeMin || age > AgeMax {
		return nil, domain.ReasonOutOfRange
	}
	return &age, ""
}
