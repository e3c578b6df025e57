package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ProxyResponse — состояние проси из API.
type ProxyResponse struct {
	Name        string `json:"name"`
	CyclePoint  string `json:"cycle_point"`
	Status      string `json:"status"`
	Spawned     bool   `json:"spawned"`
	SubmitNum   int    `json:"submit_num"`
	SubmittedAt string `json:"submitted_at,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	FinishedAt  string `json:"finished_at,omitempty"`
}

// SummaryResponse — глобальный снимок состояния прогона из API.
type SummaryResponse struct {
	StatusString     string         `json:"status_string"`
	OldestCyclePoint string         `json:"oldest_cycle_point,omitempty"`
	NewestCyclePoint string         `json:"newest_cycle_point,omitempty"`
	NewestRunahead   string         `json:"newest_runahead_cycle_point,omitempty"`
	StateTotals      map[string]int `json:"state_totals"`
	LastUpdated      string         `json:"last_updated"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API планировщика.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Summary ---

// GetSummary возвращает глобальный снимок состояния прогона.
func (c *Client) GetSummary() (*SummaryResponse, error) {
	var summary SummaryResponse
	err := c.get("/api/v1/summary", &summary)
	return &summary, err
}

// --- Proxies ---

// ListProxies возвращает все живые проси.
func (c *Client) ListProxies() ([]ProxyResponse, error) {
	var proxies []ProxyResponse
	err := c.list("/api/v1/proxies", &proxies)
	return proxies, err
}

// GetProxy возвращает проси по идентификатору "name.cycle_point".
func (c *Client) GetProxy(id string) (*ProxyResponse, error) {
	var proxy ProxyResponse
	err := c.get("/api/v1/proxies/"+id, &proxy)
	return &proxy, err
}

// TriggerProxy ставит проси на ручной запуск.
func (c *Client) TriggerProxy(id string) error {
	return c.post("/api/v1/proxies/" + id + "/trigger")
}

// KillProxy отменяет активную отправку проси.
func (c *Client) KillProxy(id string) error {
	return c.post("/api/v1/proxies/" + id + "/kill")
}

// HoldProxy удерживает проси от перехода в готовность.
func (c *Client) HoldProxy(id string) error {
	return c.post("/api/v1/proxies/" + id + "/hold")
}

// ReleaseProxy снимает удержание проси.
func (c *Client) ReleaseProxy(id string) error {
	return c.post("/api/v1/proxies/" + id + "/release")
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(dr.Data, result)
}

func (c *Client) post(path string) error {
	resp, err := c.do(http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
