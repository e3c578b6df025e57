package domain

import "github.com/shaiso/cyclesched/internal/cycle"

// Identity is the (name, cycle-point) pair that uniquely identifies a
// task proxy within a run. Identity is never reused.
type Identity struct {
	Name  string
	Point cycle.Point
}

// String renders the canonical "name.cycle" identity form.
func (id Identity) String() string {
	return id.Name + "." + id.Point.String()
}

// Equal reports exact identity equality.
func (id Identity) Equal(other Identity) bool {
	return id.Name == other.Name && id.Point.Equal(other.Point)
}
