package recoders

import (
	"sort"
	"strings"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

const (
	// DefaultForcePrefix names the "physical force technique used" indicators.
	DefaultForcePrefix = "pf_"
	// ForceMarker is the only value that counts as fired.
	ForceMarker = "Y"
)

// DiscoverForceFields returns, sorted, every field name carrying prefix in
// any record of the partition. Partitions differ in which indicators exist.
func DiscoverForceFields(records []domain.RawRecord, prefix string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for name := range r.Fields {
			if strings.HasPrefix(name, prefix) {
				seen[name] = struct{}{}
			}
		}
	}
	fields := make([]string, 0, len(seen))
	for name := range seen {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// AggregateForce reports whether any of fields holds ForceMarker.
// Missing or other values do not fire; an empty field set is always false.
func AggregateForce(r domain.RawRecord, fields []string) bool {
	for _, name := range fields {
		if v, ok := r.Fields[name]; ok && v == ForceMarker {
			return true
		}
	}
	return false
}
