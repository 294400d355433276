// Package client provides a REST client for the REDit attack server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client issues authenticated requests against the REDit server.
// Every call is a single outbound request; retry policy, if any,
// belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given server URL, authenticated with the
// bearer credential. Timeout bounds every request end to end.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do issues a single request and decodes the JSON response into out.
// Transport failures map to ErrTransport, 404 to ErrNotFound, and any
// other non-2xx status to ErrService with the body surfaced verbatim.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	slog.Debug("server request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	slog.Debug("server response", "status", resp.StatusCode, "path", path, "request_id", requestID)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s: %s", ErrService, resp.Status, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SubmitJob submits an attack configuration for execution. The config
// is validated locally before any network call.
func (c *Client) SubmitJob(ctx context.Context, req SubmitJobRequest) (*SubmitJobResponse, error) {
	if len(req.Config) == 0 {
		return nil, fmt.Errorf("%w: config section is required", ErrValidation)
	}
	if _, ok := req.Config["attack"]; !ok {
		return nil, fmt.Errorf("%w: attack configuration is required", ErrValidation)
	}

	var resp SubmitJobResponse
	if err := c.do(ctx, http.MethodPost, "/run", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetJob returns the latest snapshot of a job.
func (c *Client) GetJob(ctx context.Context, id int64) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, "/jobs/"+strconv.FormatInt(id, 10), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns all jobs, optionally narrowed by status and limit.
// The server endpoint has no query parameters; filtering happens here.
func (c *Client) ListJobs(ctx context.Context, filter ListJobsFilter) ([]Job, error) {
	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &resp); err != nil {
		return nil, err
	}

	jobs := resp.Jobs
	if filter.Status != "" {
		filtered := jobs[:0]
		for _, j := range jobs {
			if j.Status == filter.Status {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

// GetResults fetches the results of a job. The server returns whatever
// is available; for non-terminal jobs the set is partial and may grow.
func (c *Client) GetResults(ctx context.Context, id int64, filter ResultFilter) (*JobResults, error) {
	var resp JobResults
	if err := c.do(ctx, http.MethodGet, "/jobs/"+strconv.FormatInt(id, 10)+"/results", nil, &resp); err != nil {
		return nil, err
	}
	resp.Results = filter.Apply(resp.Results)
	return &resp, nil
}

// DeleteJob deletes a single job.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/jobs/"+strconv.FormatInt(id, 10), nil, nil)
}

// DeleteAllJobs deletes every job owned by the caller.
func (c *Client) DeleteAllJobs(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/jobs", nil, nil)
}

// ListAlgorithms returns the attack algorithms the server supports.
func (c *Client) ListAlgorithms(ctx context.Context) ([]Algorithm, error) {
	// The endpoint historically returned either a bare array or a
	// wrapper object; accept both.
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/attack_algorithms", nil, &raw); err != nil {
		return nil, err
	}

	var algorithms []Algorithm
	if err := json.Unmarshal(raw, &algorithms); err == nil {
		return algorithms, nil
	}
	var wrapper struct {
		Algorithms []Algorithm `json:"algorithms"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("decode algorithms: %w", err)
	}
	return wrapper.Algorithms, nil
}

// GetAlgorithm returns details for a single algorithm by name.
func (c *Client) GetAlgorithm(ctx context.Context, name string) (*Algorithm, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: algorithm name is required", ErrValidation)
	}
	var algo Algorithm
	if err := c.do(ctx, http.MethodGet, "/attack_algorithms/"+url.PathEscape(name), nil, &algo); err != nil {
		return nil, err
	}
	return &algo, nil
}

// ListDatasets returns all datasets.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/datasets", nil, &raw); err != nil {
		return nil, err
	}

	var datasets []Dataset
	if err := json.Unmarshal(raw, &datasets); err == nil {
		return datasets, nil
	}
	var wrapper struct {
		Datasets []Dataset `json:"datasets"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("decode datasets: %w", err)
	}
	return wrapper.Datasets, nil
}

// GetDataset returns a dataset with its entries.
func (c *Client) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	var ds Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(name), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// CreateDataset creates a new dataset. Entries must each carry a goal
// and a prompt; this is checked locally before the request.
func (c *Client) CreateDataset(ctx context.Context, ds Dataset) (*Dataset, error) {
	if ds.Name == "" {
		return nil, fmt.Errorf("%w: dataset name is required", ErrValidation)
	}
	if err := ValidateEntries(ds.Entries); err != nil {
		return nil, err
	}

	var created Dataset
	if err := c.do(ctx, http.MethodPost, "/datasets", ds, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteDataset deletes a dataset and all its entries.
func (c *Client) DeleteDataset(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/datasets/"+url.PathEscape(name), nil, nil)
}

// GetDatasetEntries returns a page of entries for a dataset.
func (c *Client) GetDatasetEntries(ctx context.Context, name string, limit, offset int) ([]DatasetEntry, error) {
	path := "/datasets/" + url.PathEscape(name) + "/entries"
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	var entries []DatasetEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}
	var wrapper struct {
		Entries []DatasetEntry `json:"entries"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return wrapper.Entries, nil
}

// AddDatasetEntries appends entries to an existing dataset.
func (c *Client) AddDatasetEntries(ctx context.Context, name string, entries []DatasetEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries to add", ErrValidation)
	}
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/datasets/"+url.PathEscape(name)+"/entries", entries, nil)
}

// ValidateEntries checks that every entry carries both a goal and a prompt.
func ValidateEntries(entries []DatasetEntry) error {
	for i, e := range entries {
		if e.Goal == "" || e.Prompt == "" {
			return fmt.Errorf("%w: entry %d must have 'prompt' and 'goal' fields", ErrValidation, i+1)
		}
	}
	return nil
}
