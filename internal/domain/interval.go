package domain

import (
	"encoding"
	"fmt"
	"time"
)

// Unit is the unit an interval magnitude is expressed in. Learning and
// relearning intervals are minutes; review intervals are days. Carrying
// the unit alongside the magnitude keeps the two from being confused.
type Unit int

const (
	UnitMinutes Unit = iota + 1
	UnitDays
)

var (
	unitNames  = [...]string{UnitMinutes: "min", UnitDays: "day"}
	unitByName = map[string]Unit{"min": UnitMinutes, "day": UnitDays}
)

var (
	_ encoding.TextMarshaler   = Unit(0)
	_ encoding.TextUnmarshaler = (*Unit)(nil)
)

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if u < UnitMinutes || u > UnitDays {
		return nil, fmt.Errorf("invalid interval unit: %d", int(u))
	}
	return []byte(unitNames[u]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	v, ok := unitByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid interval unit: %q", text)
	}
	*u = v
	return nil
}

// Interval is a scheduling delay with an explicit unit.
type Interval struct {
	Amount int
	Unit   Unit
}

// Minutes returns a minute-scale interval.
func Minutes(n int) Interval {
	return Interval{Amount: n, Unit: UnitMinutes}
}

// Days returns a day-scale interval.
func Days(n int) Interval {
	return Interval{Amount: n, Unit: UnitDays}
}

// Duration converts the interval into a time.Duration.
func (iv Interval) Duration() time.Duration {
	switch iv.Unit {
	case UnitDays:
		return time.Duration(iv.Amount) * 24 * time.Hour
	default:
		return time.Duration(iv.Amount) * time.Minute
	}
}

// String renders the interval the way the study UI shows it:
// "N min" for minute intervals, "1 day" / "N days" for day intervals.
func (iv Interval) String() string {
	if iv.Unit == UnitDays {
		if iv.Amount == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", iv.Amount)
	}
	return fmt.Sprintf("%d min", iv.Amount)
}
