package cycle

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronFieldParser parses the five-field cron expressions used by
// cron-backed sequences.
var cronFieldParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Sequence is a recurring cycle point generator, i.e. a Task
// Definition's "sequence". Two backends are supported: a cron-style
// recurrence over datetime points, and a fixed-step recurrence over
// integer points.
type Sequence interface {
	// Next returns the first point strictly after 'after' that this
	// sequence would produce, or ok=false if the sequence is bounded
	// and exhausted.
	Next(after Point) (Point, bool)

	// FirstPointOnOrAfter returns the first point >= from generated by
	// this sequence (used to adjust a coldstart point onto-sequence).
	FirstPointOnOrAfter(from Point) (Point, bool)
}

// CronSequence generates datetime points following a cron expression,
// optionally bounded to [start, end).
type CronSequence struct {
	expr     string
	schedule cron.Schedule
	start    *DateTimePoint
	end      *DateTimePoint
}

// NewCronSequence builds a CronSequence from a 5-field cron expression.
func NewCronSequence(expr string, start, end *DateTimePoint) (*CronSequence, error) {
	sched, err := cronFieldParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("cycle: invalid cron sequence %q: %w", expr, err)
	}
	return &CronSequence{expr: expr, schedule: sched, start: start, end: end}, nil
}

func (s *CronSequence) Next(after Point) (Point, bool) {
	dp, ok := after.(DateTimePoint)
	if !ok {
		return nil, false
	}
	if s.start != nil && dp.t.Before(s.start.t) {
		return s.FirstPointOnOrAfter(DateTimePoint{t: s.start.t, ZoneExplicit: dp.ZoneExplicit})
	}
	next := s.schedule.Next(dp.t)
	np := DateTimePoint{t: next, ZoneExplicit: dp.ZoneExplicit}
	if s.end != nil && !np.Before(*s.end) {
		return nil, false
	}
	return np, true
}

func (s *CronSequence) FirstPointOnOrAfter(from Point) (Point, bool) {
	dp, ok := from.(DateTimePoint)
	if !ok {
		return nil, false
	}
	if s.start != nil && dp.t.Before(s.start.t) {
		dp = DateTimePoint{t: s.start.t, ZoneExplicit: dp.ZoneExplicit}
	}
	// cron.Schedule.Next is strictly-after, so probe one tick earlier
	// to allow 'from' itself to be returned when it is on-sequence.
	probe := dp.t.Add(-time.Minute)
	next := s.schedule.Next(probe)
	np := DateTimePoint{t: next, ZoneExplicit: dp.ZoneExplicit}
	if s.end != nil && !np.Before(*s.end) {
		return nil, false
	}
	return np, true
}

// IntegerSequence generates integer points at a fixed step, optionally
// bounded to [start, end).
type IntegerSequence struct {
	Step  int64
	Start IntegerPoint
	End   *IntegerPoint
}

// NewIntegerSequence builds a fixed-step integer sequence. Step must be
// positive.
func NewIntegerSequence(step int64, start IntegerPoint, end *IntegerPoint) (*IntegerSequence, error) {
	if step <= 0 {
		return nil, fmt.Errorf("cycle: integer sequence step must be positive, got %d", step)
	}
	return &IntegerSequence{Step: step, Start: start, End: end}, nil
}

func (s *IntegerSequence) Next(after Point) (Point, bool) {
	ip, ok := after.(IntegerPoint)
	if !ok {
		return nil, false
	}
	// Find the first on-sequence point strictly greater than ip.
	n := ip - s.Start
	var steps int64
	if n < 0 {
		steps = 0
	} else {
		steps = int64(n)/s.Step + 1
	}
	next := s.Start + IntegerPoint(steps*s.Step)
	if next <= ip {
		next += IntegerPoint(s.Step)
	}
	if s.End != nil && !next.Before(*s.End) {
		return nil, false
	}
	return next, true
}

func (s *IntegerSequence) FirstPointOnOrAfter(from Point) (Point, bool) {
	ip, ok := from.(IntegerPoint)
	if !ok {
		return nil, false
	}
	if ip <= s.Start {
		if s.End != nil && !s.Start.Before(*s.End) {
			return nil, false
		}
		return s.Start, true
	}
	n := (ip - s.Start)
	rem := int64(n) % s.Step
	var point IntegerPoint
	if rem == 0 {
		point = ip
	} else {
		point = ip + IntegerPoint(s.Step-rem)
	}
	if s.End != nil && !point.Before(*s.End) {
		return nil, false
	}
	return point, true
}

// NextAcrossSequences returns the minimum next point across all given
// sequences, or ok=false if none of them produce a further point (the
// point lies out of the sequence bounds — spawning stops here).
func NextAcrossSequences(seqs []Sequence, after Point) (Point, bool) {
	var best Point
	found := false
	for _, seq := range seqs {
		p, ok := seq.Next(after)
		if !ok {
			continue
		}
		if !found || p.Before(best) {
			best = p
			found = true
		}
	}
	return best, found
}
