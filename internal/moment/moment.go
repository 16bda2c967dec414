// Package moment formats the API's timestamps for display.
package moment

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultLayout is used by Local when no layout is given.
const DefaultLayout = "2006-01-02 15:04"

// serverLayouts are the shapes the API emits: Python's isoformat() with a
// trailing Z, with or without microseconds.
var serverLayouts = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// ParseUTC parses a timestamp sent by the API. Values without a zone are
// taken as UTC.
func ParseUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range serverLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Formatter renders times in a fixed location relative to a clock.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

// New returns a Formatter for the named IANA zone. "" and "Local" use the
// machine's zone.
func New(zone string, opts ...Option) (*Formatter, error) {
	loc := time.Local
	if zone != "" && zone != "Local" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", zone, err)
		}
		loc = l
	}
	f := &Formatter{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Location returns the zone used by Local.
func (f *Formatter) Location() *time.Location { return f.loc }

// Local formats t in the formatter's zone.
func (f *Formatter) Local(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultLayout
	}
	return t.In(f.loc).Format(layout)
}

// FromNow renders t relative to the clock, e.g. "3 minutes ago".
func (f *Formatter) FromNow(t time.Time) string {
	return humanize.RelTime(t, f.now(), "ago", "from now")
}

// Format parses a server timestamp and renders it as "<local> (<relative>)".
// Unparseable input is returned unchanged.
func (f *Formatter) Format(s string) string {
	t, err := ParseUTC(s)
	if err != nil {
		return s
	}
	return f.Local(t, "") + " (" + f.FromNow(t) + ")"
}
