package services

import (
	"fmt"

	"github.com/renjie/prism-stops/pkg/adapters/factory"
	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// WithCheckSpecs builds the battery from configuration instead of the
// default. Specs are converted on each Validate call so a bad spec surfaces
// as an error there.
func WithCheckSpecs(specs ...domain.CheckSpec) ValidatorOption {
	return func(v *Validator) {
		v.specs = specs
	}
}

// battery returns the checks to run for one validation.
func (v *Validator) battery() ([]ports.Check, error) {
	if len(v.specs) == 0 {
		return v.checks, nil
	}

	built, err := factory.GetCheckFactory().NewBattery(v.specs)
	if err != nil {
		// Strict mode: fail
		return nil, fmt.Errorf("validate: %w", err)
	}
	return built, nil
}
