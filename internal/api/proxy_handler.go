package api

import (
	"net/http"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/mq"
	"github.com/shaiso/cyclesched/internal/pool"
)

// GetProxy возвращает состояние одной проси по идентификатору
// "name.cycle_point".
// GET /api/v1/proxies/{id}
func (h *Handler) GetProxy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIdentity(w, r)
	if !ok {
		return
	}

	p, ok := h.pool.Get(id)
	if !ok {
		NotFound(w, "proxy not found")
		return
	}

	Success(w, ProxyResponse{
		Name:        p.Identity().Name,
		CyclePoint:  p.Identity().Point.String(),
		Status:      string(p.Status()),
		Spawned:     p.HasSpawned(),
		SubmitNum:   p.SubmitNum(),
		SubmittedAt: p.SubmittedTime(),
		StartedAt:   p.StartedTime(),
		FinishedAt:  p.FinishedTime(),
	})
}

// TriggerProxy queues a manual trigger against a proxy.
// POST /api/v1/proxies/{id}/trigger
func (h *Handler) TriggerProxy(w http.ResponseWriter, r *http.Request) {
	h.putCommand(w, r, pool.CommandTrigger)
}

// KillProxy queues a kill against a proxy's active submission. It is
// best-effort: the request only marks the proxy's kill pending and, if
// a broker is configured, dispatches a kill command to the external
// process pool; the actual state transition is left to
// JobKillCallback once that dispatch reports an outcome.
// POST /api/v1/proxies/{id}/kill
func (h *Handler) KillProxy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIdentity(w, r)
	if !ok {
		return
	}

	p, ok := h.pool.Get(id)
	if !ok {
		NotFound(w, "proxy not found")
		return
	}

	if h.publisher != nil {
		payload := mq.JobKillPayload{
			TaskName:   id.Name,
			CyclePoint: id.Point.String(),
			BatchJobID: p.BatchJobID(),
		}
		if err := h.publisher.PublishJobKill(r.Context(), payload); err != nil {
			h.logger.Warn("publish job kill failed", "identity", id.String(), "error", err)
		}
	}

	if err := h.pool.PutCommand(id, pool.CommandKill); err != nil {
		NotFound(w, err.Error())
		return
	}
	NoContent(w)
}

// HoldProxy holds a proxy, preventing it from becoming ready.
// POST /api/v1/proxies/{id}/hold
func (h *Handler) HoldProxy(w http.ResponseWriter, r *http.Request) {
	h.putCommand(w, r, pool.CommandHold)
}

// ReleaseProxy releases a held proxy.
// POST /api/v1/proxies/{id}/release
func (h *Handler) ReleaseProxy(w http.ResponseWriter, r *http.Request) {
	h.putCommand(w, r, pool.CommandRelease)
}

func (h *Handler) putCommand(w http.ResponseWriter, r *http.Request, cmd pool.Command) {
	id, ok := h.parseIdentity(w, r)
	if !ok {
		return
	}
	if err := h.pool.PutCommand(id, cmd); err != nil {
		NotFound(w, err.Error())
		return
	}
	NoContent(w)
}

// parseIdentity splits the {id} path value "name.cycle_point" into a
// domain.Identity, writing a 400 response and returning ok=false on a
// malformed value.
func (h *Handler) parseIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	raw := r.PathValue("id")
	name, pointStr, ok := splitIdentity(raw)
	if !ok {
		BadRequest(w, "expected id of the form name.cycle_point")
		return domain.Identity{}, false
	}
	point, err := cycle.ParsePoint(pointStr)
	if err != nil {
		BadRequest(w, "invalid cycle point: "+err.Error())
		return domain.Identity{}, false
	}
	return domain.Identity{Name: name, Point: point}, true
}

// splitIdentity splits "name.cycle_point" on the last dot, since task
// names never contain one.
func splitIdentity(raw string) (name, point string, ok bool) {
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '.' {
			return raw[:i], raw[i+1:], true
		}
	}
	return "", "", false
}
