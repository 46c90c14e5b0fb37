package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DateFormat 定义原始日期字段的格式
type DateFormat string

const (
	DateFormatYMD DateFormat = "YMD" // 2006-01-15
	DateFormatMDY DateFormat = "MDY" // 01152007
)

// ParseDateFormat accepts the textual names used in configuration.
func ParseDateFormat(s string) (DateFormat, error) {
	switch DateFormat(strings.ToUpper(strings.TrimSpace(s))) {
	case DateFormatYMD:
		return DateFormatYMD, nil
	case DateFormatMDY:
		return DateFormatMDY, nil
	default:
		return "", fmt.Errorf("unknown date format %q", s)
	}
}

// FormatPolicy maps a partition year to the date format its source file uses.
type FormatPolicy map[int]DateFormat

// DefaultFormatPolicy returns the upstream layout history:
// 2006 files use YMD, 2007 through 2012 use compact MDY.
func DefaultFormatPolicy() FormatPolicy {
	p := FormatPolicy{2006: DateFormatYMD}
	for y := 2007; y <= 2012; y++ {
		p[y] = DateFormatMDY
	}
	return p
}

// Resolve returns the format for year or ErrNoFormatPolicy.
func (p FormatPolicy) Resolve(year int) (DateFormat, error) {
	f, ok := p[year]
	if !ok {
		return "", fmt.Errorf("year %d: %w", year, ErrNoFormatPolicy)
	}
	return f, nil
}

// Years returns the covered years in ascending order.
func (p FormatPolicy) Years() []int {
	years := make([]int, 0, len(p))
	for y := range p {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
