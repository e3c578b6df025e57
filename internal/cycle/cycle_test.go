package cycle

import (
	"testing"
	"time"
)

func TestIntegerPointOrdering(t *testing.T) {
	a := IntegerPoint(1)
	b := IntegerPoint(2)

	if !a.Before(b) {
		t.Fatal("expected 1 < 2")
	}
	if b.Before(a) {
		t.Fatal("expected 2 not < 1")
	}
	if !a.Equal(IntegerPoint(1)) {
		t.Fatal("expected 1 == 1")
	}
}

func TestIntegerSequenceNext(t *testing.T) {
	seq, err := NewIntegerSequence(3, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	next, ok := seq.Next(IntegerPoint(1))
	if !ok || next.(IntegerPoint) != 4 {
		t.Fatalf("expected 4, got %v ok=%v", next, ok)
	}

	next, ok = seq.Next(IntegerPoint(4))
	if !ok || next.(IntegerPoint) != 7 {
		t.Fatalf("expected 7, got %v ok=%v", next, ok)
	}
}

func TestIntegerSequenceBounded(t *testing.T) {
	end := IntegerPoint(5)
	seq, err := NewIntegerSequence(1, 1, &end)
	if err != nil {
		t.Fatal(err)
	}

	_, ok := seq.Next(IntegerPoint(4))
	if ok {
		t.Fatal("expected exhausted sequence at bound")
	}
}

func TestCronSequenceNext(t *testing.T) {
	seq, err := NewCronSequence("0 0 * * *", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	start, _ := ParseDateTimePoint("20250101T0000")
	next, ok := seq.Next(start)
	if !ok {
		t.Fatal("expected a next point")
	}
	dp := next.(DateTimePoint)
	if dp.t.Hour() != 0 || dp.t.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", dp.t)
	}
	if !dp.t.After(start.t) {
		t.Fatal("next point must be strictly after the input")
	}
}

func TestNextAcrossSequencesPicksMinimum(t *testing.T) {
	seqA, _ := NewIntegerSequence(10, 0, nil)
	seqB, _ := NewIntegerSequence(3, 0, nil)

	next, ok := NextAcrossSequences([]Sequence{seqA, seqB}, IntegerPoint(0))
	if !ok {
		t.Fatal("expected a point")
	}
	if next.(IntegerPoint) != 3 {
		t.Fatalf("expected minimum next point 3, got %v", next)
	}
}

func TestNextAcrossSequencesNoneProduceStops(t *testing.T) {
	end := IntegerPoint(2)
	seq, _ := NewIntegerSequence(1, 0, &end)

	_, ok := NextAcrossSequences([]Sequence{seq}, IntegerPoint(5))
	if ok {
		t.Fatal("expected no successor when out of sequence bounds")
	}
}

func TestDateTimePointAsSecondsLocalAdjustment(t *testing.T) {
	noZone := NewDateTimePoint(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false)
	withZone := NewDateTimePoint(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true)

	// Both represent the same instant but ZoneExplicit controls whether
	// local-zone adjustment applies to the wall-clock reading used for
	// clock-trigger arithmetic; the two need not be numerically equal
	// in general, only independently well-defined.
	if noZone.AsSeconds() == 0 {
		t.Fatal("expected a non-zero epoch second count")
	}
	if withZone.AsSeconds() != withZone.t.Unix() {
		t.Fatal("explicit-zone point must not be adjusted")
	}
}
