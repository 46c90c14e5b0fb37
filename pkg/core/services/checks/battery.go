package checks

import (
	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// Issue names raised by the default battery.
const (
	IssueMissingColumns       = "missing_columns"
	IssueInvalidYears         = "invalid_years"
	IssueInvalidAges          = "invalid_ages"
	IssueHighAgeMissing       = "high_age_missing"
	IssueRaceNotFactor        = "race_not_factor"
	IssueUnexpectedRaceLevels = "unexpected_race_levels"
	IssueHighRaceMissing      = "high_race_missing"
	IssueFemaleNotLogical     = "female_not_logical"
	IssueHighXCoordMissing    = "high_xcoord_missing"
	IssueHighYCoordMissing    = "high_ycoord_missing"
	IssueDuplicateIDs         = "duplicate_ids"
)

// Default thresholds and bounds.
const (
	MinYear = 2006
	MaxYear = 2012

	AgeMissingThreshold   = 0.20
	RaceMissingThreshold  = 0.05
	CoordMissingThreshold = 0.50
)

// DefaultBattery returns the standard checks in reporting order.
func DefaultBattery() []ports.Check {
	return []ports.Check{
		&SchemaCheck{Required: domain.StandardColumnNames(), Issue: IssueMissingColumns},
		&RangeCheck{Column: domain.ColYear, Min: MinYear, Max: MaxYear, Issue: IssueInvalidYears},
		&RangeCheck{Column: domain.ColAge, Min: 0, Max: 100, Issue: IssueInvalidAges},
		&MissingRateCheck{Column: domain.ColAge, Threshold: AgeMissingThreshold, Issue: IssueHighAgeMissing},
		&CategoryCheck{
			Column:            domain.ColRace,
			Levels:            domain.RaceLevels(),
			NotCategoricalKey: IssueRaceNotFactor,
			UnexpectedKey:     IssueUnexpectedRaceLevels,
		},
		&MissingRateCheck{Column: domain.ColRace, Threshold: RaceMissingThreshold, Issue: IssueHighRaceMissing},
		&BooleanCheck{Column: domain.ColFemale, Issue: IssueFemaleNotLogical},
		&MissingRateCheck{Column: domain.ColXCoord, Threshold: CoordMissingThreshold, Issue: IssueHighXCoordMissing},
		&MissingRateCheck{Column: domain.ColYCoord, Threshold: CoordMissingThreshold, Issue: IssueHighYCoordMissing},
		&UniqueCheck{Column: domain.ColID, Issue: IssueDuplicateIDs},
	}
}
