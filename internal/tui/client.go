package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/horizon-sh/horizon/internal/server"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the Horizon API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// Timeline fetches the classified bucket view
func (c *Client) Timeline(view timeline.View) (*server.TimelineResponse, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/timeline?view=" + string(view))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var tl server.TimelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// Focus fetches the current focus suggestion
func (c *Client) Focus() (timeline.Recommendation, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/focus")
	if err != nil {
		return timeline.Recommendation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return timeline.Recommendation{}, fmt.Errorf("API error: %s", string(body))
	}

	var rec timeline.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return timeline.Recommendation{}, err
	}
	return rec, nil
}

// CreateTask creates a new task
func (c *Client) CreateTask(title string) (string, error) {
	resp, err := c.post("/tasks", map[string]string{"title": title})
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// CompleteTask marks a task completed
func (c *Client) CompleteTask(taskID string) error {
	_, err := c.post("/tasks/"+taskID+"/complete", nil)
	return err
}

// PlanTask moves a task into planning
func (c *Client) PlanTask(taskID string) error {
	_, err := c.post("/tasks/"+taskID+"/plan", nil)
	return err
}

// DismissStale suppresses the staleness flag for a task
func (c *Client) DismissStale(taskID string) error {
	_, err := c.post("/tasks/"+taskID+"/dismiss-stale", nil)
	return err
}

// ReopenStale re-enables the staleness check for a task
func (c *Client) ReopenStale(taskID string) error {
	_, err := c.post("/tasks/"+taskID+"/reopen-stale", nil)
	return err
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	return body, nil
}

// CheckHealth checks if the daemon is healthy
func (c *Client) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var health struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, err
	}

	return health.OK, nil
}
