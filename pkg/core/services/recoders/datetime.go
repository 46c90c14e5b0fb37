package recoders

import (
	"fmt"
	"strings"
	"time"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

// Sentinel dates meaning "unknown" in each source layout.
const (
	SentinelYMD = "1900-12-31"
	SentinelMDY = "12311900"
)

type dateLayout struct {
	sentinel string
	date     string // time.Parse layout for the date alone
	stamp    string // layout for "<date> <HHMM>"
}

var dateLayouts = map[domain.DateFormat]dateLayout{
	domain.DateFormatYMD: {sentinel: SentinelYMD, date: "2006-01-02", stamp: "2006-01-02 1504"},
	domain.DateFormatMDY: {sentinel: SentinelMDY, date: "01022006", stamp: "01022006 1504"},
}

// DateTime is the parsed date and minute-resolution timestamp of a stop.
type DateTime struct {
	Date       *time.Time
	Time       *time.Time
	DateReason domain.DegradationReason
	TimeReason domain.DegradationReason
}

// ParseDateTime parses a raw (date, time) pair under format.
//
// The date sentinel is scrubbed before parsing and any unparseable date is
// missing. The time is left-padded with '0' to four characters and parsed
// together with the raw date text, so a missing date always yields a missing
// time. The only error is an unknown format, which is caller misuse.
func ParseDateTime(date, clock domain.Field, format domain.DateFormat) (DateTime, error) {
	layout, ok := dateLayouts[format]
	if !ok {
		return DateTime{}, fmt.Errorf("parse date/time: unsupported format %q", format)
	}

	var out DateTime
	if !date.Present || date.Text == "" {
		return out, nil
	}
	if date.Text == layout.sentinel {
		out.DateReason = domain.ReasonSentinel
		return out, nil
	}
	d, err := time.Parse(layout.date, date.Text)
	if err != nil {
		out.DateReason = domain.ReasonUnparseable
		return out, nil
	}
	out.Date = &d

	if !clock.Present {
		return out, nil
	}
	ts, err := time.Parse(layout.stamp, date.Text+" "+padTime(clock.Text))
	if err != nil {
		out.TimeReason = domain.ReasonUnparseable
		return out, nil
	}
	out.Time = &ts
	return out, nil
}

// padTime left-pads with '0' to four characters; longer values are kept as is.
func padTime(s string) string {
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}
