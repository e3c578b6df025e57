// Package graph defines the contract for the external
// dependency-resolver collaborator: inter-task dependency graphs (as
// opposed to intra-cycle prerequisites, which internal/domain.Prerequisite
// covers) are out of scope here, wired only through this interface so a
// real resolver can be dropped in without touching the proxy or pool
// packages.
package graph

import "github.com/shaiso/cyclesched/internal/domain"

// Resolver decides which identities are ready to run, given the
// current status of every other identity in the pool. A concrete
// implementation would own the dependency DAG; this package commits
// only to the single operation the scheduler actually needs.
type Resolver interface {
	// Ready returns the identities among candidates whose upstream
	// dependencies are all satisfied according to statuses.
	Ready(candidates []domain.Identity, statuses map[string]domain.TaskStatus) []domain.Identity
}

// PrerequisiteResolver is the default Resolver: it has no notion of
// an inter-task dependency graph at all, and instead defers entirely
// to each identity's own intra-cycle Prerequisite list, which is
// already tracked on the proxy. It exists so the pool always has a
// working Resolver even before a real dependency-graph implementation
// is wired in.
type PrerequisiteResolver struct{}

var _ Resolver = PrerequisiteResolver{}

// Ready treats every candidate as ready; prerequisite satisfaction is
// checked by the caller via domain.AllSatisfied before a candidate
// ever reaches the resolver.
func (PrerequisiteResolver) Ready(candidates []domain.Identity, _ map[string]domain.TaskStatus) []domain.Identity {
	return candidates
}
