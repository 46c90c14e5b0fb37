package ports

import (
	"time"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

// Observer receives side-channel statistics from the recoding and validation
// services. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveDegradation(d domain.Degradation)
	ObservePartition(year, rows int, elapsed time.Duration)
	ObserveReport(report *domain.ValidationReport)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) ObserveDegradation(domain.Degradation) {}
func (NopObserver) ObservePartition(int, int, time.Duration) {}
func (NopObserver) ObserveReport(*domain.ValidationReport) {}
