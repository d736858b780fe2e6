package cache

import (
	"fmt"
	"strconv"
	"time"
)

// Phase is the trading-session phase of a capture. The numeric value is the
// phase's rank within a day and is embedded in the key so that keys sort
// chronologically.
type Phase int

const (
	PhasePre  Phase = 1
	PhaseIn   Phase = 2
	PhasePost Phase = 3
)

var phaseTags = map[Phase]string{
	PhasePre:  "pre",
	PhaseIn:   "in",
	PhasePost: "post",
}

func (p Phase) String() string {
	if tag, ok := phaseTags[p]; ok {
		return tag
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Regular session bounds in market-local time, minutes after midnight.
const (
	SessionOpenMinute  = 9*60 + 30
	SessionCloseMinute = 16 * 60
)

// PhaseAt classifies a market-local wall-clock time.
func PhaseAt(t time.Time) Phase {
	m := t.Hour()*60 + t.Minute()
	switch {
	case m < SessionOpenMinute:
		return PhasePre
	case m < SessionCloseMinute:
		return PhaseIn
	default:
		return PhasePost
	}
}

// SessionKey identifies one capture slot: a market-local calendar day and a
// session phase. Its string form is YYMMDD-<rank><tag>, e.g. 261016-2in.
type SessionKey struct {
	Year  int
	Month time.Month
	Day   int
	Phase Phase
}

const keyDateLayout = "060102"

func (k SessionKey) date() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s-%d%s", k.date().Format(keyDateLayout), int(k.Phase), k.Phase)
}

// PreviousDay returns the key for the same phase one calendar day earlier.
func (k SessionKey) PreviousDay() SessionKey {
	d := k.date().AddDate(0, 0, -1)
	return SessionKey{Year: d.Year(), Month: d.Month(), Day: d.Day(), Phase: k.Phase}
}

// MarketZone returns the fixed-offset market time zone.
func MarketZone(utcOffsetHours float64) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+g", utcOffsetHours), int(utcOffsetHours*3600))
}

// ComputeSessionKey derives the session key for now in the market zone.
func ComputeSessionKey(now time.Time, utcOffsetHours float64) SessionKey {
	local := now.In(MarketZone(utcOffsetHours))
	return SessionKey{
		Year:  local.Year(),
		Month: local.Month(),
		Day:   local.Day(),
		Phase: PhaseAt(local),
	}
}

// ParseSessionKey parses the string form produced by SessionKey.String.
func ParseSessionKey(s string) (SessionKey, error) {
	if len(s) < 9 || s[6] != '-' {
		return SessionKey{}, fmt.Errorf("invalid session key %q", s)
	}
	d, err := time.Parse(keyDateLayout, s[:6])
	if err != nil {
		return SessionKey{}, fmt.Errorf("invalid session key date %q: %w", s, err)
	}
	rank, err := strconv.Atoi(s[7:8])
	if err != nil {
		return SessionKey{}, fmt.Errorf("invalid session key phase %q: %w", s, err)
	}
	p := Phase(rank)
	if tag, ok := phaseTags[p]; !ok || tag != s[8:] {
		return SessionKey{}, fmt.Errorf("invalid session key phase %q", s)
	}
	return SessionKey{Year: d.Year(), Month: d.Month(), Day: d.Day(), Phase: p}, nil
}
