// Package pool implements the scheduler pool: the arena of live task
// proxies keyed by identity, plus the task-definition table proxies
// reference by name (the handle side of the arena+handle pattern that
// breaks the proxy/task-def/sequence reference cycle).
package pool

import (
	"log/slog"
	"sync"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/events"
	"github.com/shaiso/cyclesched/internal/proxy"
)

// Pool is the scheduler's external contract for operating on the
// live proxy population — the surface a scheduler loop, CLI or HTTP
// API drives without reaching into proxy internals directly.
type Pool interface {
	// GetTasks returns every live proxy, in no particular order.
	GetTasks() []*proxy.Proxy

	// GetRunaheadTasks returns proxies currently beyond the runahead
	// limit, held back from running ahead of the rest of the pool.
	GetRunaheadTasks() []*proxy.Proxy

	// Get returns the live proxy for id, if any.
	Get(id domain.Identity) (*proxy.Proxy, bool)

	// PutCommand queues a command (trigger, kill, hold, release)
	// against the proxy with the given identity.
	PutCommand(id domain.Identity, cmd Command) error

	GetMinPoint() (cycle.Point, bool)
	GetMaxPoint() (cycle.Point, bool)
	GetMaxPointRunahead() (cycle.Point, bool)

	HoldPoint(p cycle.Point)
	IsHeld() bool

	// DoReload rebuilds the task-definition table from def, leaving
	// live proxies' in-flight state untouched.
	DoReload(defs []*domain.TaskDef) error
}

// Command is a client-issued action against one proxy identity.
type Command string

const (
	CommandTrigger Command = "trigger"
	CommandKill    Command = "kill"
	CommandHold    Command = "hold"
	CommandRelease Command = "release"
)

// Config supplies the pool's fixed dependencies.
type Config struct {
	EventsCfg events.Config
	Logger    *slog.Logger

	// SuiteName identifies the running workflow to custom event
	// handlers, the Go equivalent of CYLC_SUITE_NAME.
	SuiteName string
}

// InMemoryPool is the concrete Pool implementation: proxies live in a
// map guarded by a single mutex, generalized from per-run scope to
// per-proxy-identity scope.
type InMemoryPool struct {
	mu sync.RWMutex

	defs    map[string]*domain.TaskDef
	proxies map[string]*proxy.Proxy

	heldPoints map[string]bool
	globalHold bool

	eventsCfg events.Config
	suiteName string
	logger    *slog.Logger
}

// New returns an empty InMemoryPool.
func New(cfg Config) *InMemoryPool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryPool{
		defs:       make(map[string]*domain.TaskDef),
		proxies:    make(map[string]*proxy.Proxy),
		heldPoints: make(map[string]bool),
		eventsCfg:  cfg.EventsCfg,
		suiteName:  cfg.SuiteName,
		logger:     logger,
	}
}

// AddDef registers a task definition in the arena table.
func (pl *InMemoryPool) AddDef(def *domain.TaskDef) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.defs[def.Name] = def
}

// Spawn creates and registers a new proxy for id, looking up its
// definition by name in the arena table.
func (pl *InMemoryPool) Spawn(id domain.Identity, deltas *domain.DeltaBuffer) (*proxy.Proxy, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	def, ok := pl.defs[id.Name]
	if !ok {
		return nil, ErrUnknownTaskName(id.Name)
	}
	p := proxy.New(proxy.Config{
		Identity:  id,
		Def:       def,
		EventsCfg: pl.eventsCfg,
		SuiteName: pl.suiteName,
		Coldstart: def.Coldstart,
		Deltas:    deltas,
	})
	pl.proxies[id.String()] = p
	return p, nil
}

// Get returns the live proxy for id, if any.
func (pl *InMemoryPool) Get(id domain.Identity) (*proxy.Proxy, bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	p, ok := pl.proxies[id.String()]
	return p, ok
}

// Remove drops a proxy from the pool once it is torn down (terminal
// and with no event handlers pending).
func (pl *InMemoryPool) Remove(id domain.Identity) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	delete(pl.proxies, id.String())
}

// GetTasks implements Pool.
func (pl *InMemoryPool) GetTasks() []*proxy.Proxy {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	out := make([]*proxy.Proxy, 0, len(pl.proxies))
	for _, p := range pl.proxies {
		out = append(out, p)
	}
	return out
}

// GetRunaheadTasks implements Pool.
func (pl *InMemoryPool) GetRunaheadTasks() []*proxy.Proxy {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	var out []*proxy.Proxy
	for _, p := range pl.proxies {
		if p.Status() == domain.StatusRunahead {
			out = append(out, p)
		}
	}
	return out
}

// PutCommand implements Pool.
func (pl *InMemoryPool) PutCommand(id domain.Identity, cmd Command) error {
	p, ok := pl.Get(id)
	if !ok {
		return ErrUnknownIdentity(id.String())
	}
	switch cmd {
	case CommandHold:
		p.Hold()
	case CommandRelease:
		p.Release()
	case CommandTrigger:
		p.Trigger()
	case CommandKill:
		p.RequestKill()
	default:
		return ErrUnknownCommand(string(cmd))
	}
	return nil
}

// GetMinPoint implements Pool.
func (pl *InMemoryPool) GetMinPoint() (cycle.Point, bool) {
	return pl.extremePoint(true)
}

// GetMaxPoint implements Pool.
func (pl *InMemoryPool) GetMaxPoint() (cycle.Point, bool) {
	return pl.extremePoint(false)
}

// GetMaxPointRunahead returns the latest cycle point among the
// currently runahead-held proxies.
func (pl *InMemoryPool) GetMaxPointRunahead() (cycle.Point, bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	var max cycle.Point
	found := false
	for _, p := range pl.proxies {
		if p.Status() != domain.StatusRunahead {
			continue
		}
		point := p.Identity().Point
		if !found || max.Before(point) {
			max = point
			found = true
		}
	}
	return max, found
}

func (pl *InMemoryPool) extremePoint(min bool) (cycle.Point, bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	var best cycle.Point
	found := false
	for _, p := range pl.proxies {
		point := p.Identity().Point
		if !found {
			best = point
			found = true
			continue
		}
		if min && point.Before(best) {
			best = point
		}
		if !min && best.Before(point) {
			best = point
		}
	}
	return best, found
}

// HoldPoint implements Pool.
func (pl *InMemoryPool) HoldPoint(p cycle.Point) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.heldPoints[p.String()] = true
}

// IsHeld implements Pool.
func (pl *InMemoryPool) IsHeld() bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return pl.globalHold
}

// DoReload implements Pool.
func (pl *InMemoryPool) DoReload(defs []*domain.TaskDef) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	fresh := make(map[string]*domain.TaskDef, len(defs))
	for _, d := range defs {
		fresh[d.Name] = d
	}
	pl.defs = fresh
	return nil
}
