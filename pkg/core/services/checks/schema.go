package checks

import (
	"fmt"
	"strings"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// SchemaCheck reports required columns absent from the table.
type SchemaCheck struct {
	Required []string
	Issue    string
}

func (s *SchemaCheck) Name() string { return "schema" }

func (s *SchemaCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: s.Name()}
	var missing []string
	for _, name := range s.Required {
		if _, ok := table.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return result
	}
	result.Issues = map[string]domain.Issue{
		s.Issue: {
			Description: fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")),
			Count:       len(missing),
		},
	}
	return result
}
