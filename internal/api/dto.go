package api

import (
	"time"

	"github.com/shaiso/cyclesched/internal/summary"
)

// ProxyResponse — ответ с состоянием одной проси.
type ProxyResponse struct {
	Name        string    `json:"name"`
	CyclePoint  string    `json:"cycle_point"`
	Status      string    `json:"status"`
	Spawned     bool      `json:"spawned"`
	SubmitNum   int       `json:"submit_num"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// ProxyFromSummary конвертирует summary.TaskSummary в ProxyResponse.
func ProxyFromSummary(t summary.TaskSummary) ProxyResponse {
	return ProxyResponse{
		Name:        t.Identity.Name,
		CyclePoint:  t.Identity.Point.String(),
		Status:      string(t.State),
		Spawned:     t.Spawned,
		SubmitNum:   t.SubmitNum,
		SubmittedAt: t.SubmittedTime,
		StartedAt:   t.StartedTime,
		FinishedAt:  t.FinishedTime,
	}
}

// SummaryResponse — ответ с глобальным снимком состояния прогона.
type SummaryResponse struct {
	StatusString     string         `json:"status_string"`
	OldestCyclePoint string         `json:"oldest_cycle_point,omitempty"`
	NewestCyclePoint string         `json:"newest_cycle_point,omitempty"`
	NewestRunahead   string         `json:"newest_runahead_cycle_point,omitempty"`
	StateTotals      map[string]int `json:"state_totals"`
	LastUpdated      time.Time      `json:"last_updated"`
}

// SummaryFromGlobal конвертирует summary.GlobalSummary в SummaryResponse.
func SummaryFromGlobal(g summary.GlobalSummary) SummaryResponse {
	totals := make(map[string]int, len(g.StateTotals))
	for status, count := range g.StateTotals {
		totals[string(status)] = count
	}
	return SummaryResponse{
		StatusString:     string(g.StatusString),
		OldestCyclePoint: g.OldestCyclePoint,
		NewestCyclePoint: g.NewestCyclePoint,
		NewestRunahead:   g.NewestRunahead,
		StateTotals:      totals,
		LastUpdated:      g.LastUpdated,
	}
}

// CommandRequest — тело запроса для trigger/kill/hold/release.
type CommandRequest struct {
	CyclePoint string `json:"cycle_point"`
}
