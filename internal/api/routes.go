package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Summary
	mux.Handle("GET /api/v1/summary", chain(http.HandlerFunc(h.GetSummary)))

	// Proxies
	mux.Handle("GET /api/v1/proxies", chain(http.HandlerFunc(h.ListProxies)))
	mux.Handle("GET /api/v1/proxies/{id}", chain(http.HandlerFunc(h.GetProxy)))
	mux.Handle("POST /api/v1/proxies/{id}/trigger", chain(http.HandlerFunc(h.TriggerProxy)))
	mux.Handle("POST /api/v1/proxies/{id}/kill", chain(http.HandlerFunc(h.KillProxy)))
	mux.Handle("POST /api/v1/proxies/{id}/hold", chain(http.HandlerFunc(h.HoldProxy)))
	mux.Handle("POST /api/v1/proxies/{id}/release", chain(http.HandlerFunc(h.ReleaseProxy)))
}
