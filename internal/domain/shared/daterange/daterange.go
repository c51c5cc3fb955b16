package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must be after check-in")

// DateRange is a half-open stay interval [CheckIn, CheckOut) at day
// granularity. Same-day turnover is allowed: a range checking out on day N
// does not overlap one checking in on day N.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both endpoints to UTC midnight and validates the interval.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts the whole days between check-in and check-out.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn) / (24 * time.Hour))
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDate reports whether t falls inside the stay, check-out day excluded.
func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

// Day normalizes a timestamp to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
