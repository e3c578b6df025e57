package api

import "net/http"

// GetSummary возвращает глобальный снимок состояния прогона.
// GET /api/v1/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.projector.Current()
	Success(w, SummaryFromGlobal(snap.Global))
}

// ListProxies возвращает все живые проси текущего снимка.
// GET /api/v1/proxies
func (h *Handler) ListProxies(w http.ResponseWriter, r *http.Request) {
	snap := h.projector.Current()
	result := make([]ProxyResponse, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		result = append(result, ProxyFromSummary(t))
	}
	List(w, result, len(result))
}
