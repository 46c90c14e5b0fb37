package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// CategoryCheck verifies a column is categorical and that neither its
// declared levels nor its values stray outside Levels.
type CategoryCheck struct {
	Column            string
	Levels            []string
	NotCategoricalKey string
	UnexpectedKey     string
}

func (c *CategoryCheck) Name() string { return "category:" + c.Column }

func (c *CategoryCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: c.Name()}
	col, ok := table.Column(c.Column)
	if !ok {
		return result
	}
	if col.Kind != domain.KindCategory {
		result.Issues = map[string]domain.Issue{
			c.NotCategoricalKey: {Description: fmt.Sprintf("%s is %s, not categorical", c.Column, col.Kind)},
		}
		return result
	}

	allowed := make(map[string]struct{}, len(c.Levels))
	for _, l := range c.Levels {
		allowed[l] = struct{}{}
	}
	unexpected := make(map[string]struct{})
	for _, l := range col.Levels {
		if _, ok := allowed[l]; !ok {
			unexpected[l] = struct{}{}
		}
	}
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if _, ok := allowed[s]; !ok {
			unexpected[s] = struct{}{}
		}
	}
	if len(unexpected) == 0 {
		return result
	}

	levels := make([]string, 0, len(unexpected))
	for l := range unexpected {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	result.Issues = map[string]domain.Issue{
		c.UnexpectedKey: {
			Description: fmt.Sprintf("unexpected %s levels: %s", c.Column, strings.Join(levels, ", ")),
			Count:       len(levels),
		},
	}
	return result
}
