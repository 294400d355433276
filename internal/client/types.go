package client

import (
	"encoding/json"
	"time"
)

// JobStatus is the server-reported lifecycle state of a job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusError     JobStatus = "error"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further server-side change is expected.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusError, StatusCancelled:
		return true
	}
	return false
}

// Failure reports whether the status is a failure kind.
func (s JobStatus) Failure() bool {
	return s == StatusFailed || s == StatusError
}

// Job is a read-only snapshot of a server-tracked attack job. The CLI
// never transitions state locally; fields are only overwritten with
// whatever the latest GetJob response reports.
type Job struct {
	ID                  int64      `json:"job_id"`
	Description         string     `json:"description"`
	Status              JobStatus  `json:"status"`
	CompletedObjectives int        `json:"completed_objectives"`
	TotalObjectives     int        `json:"total_objectives"`
	ASR                 *float64   `json:"asr,omitempty"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// UnmarshalJSON accepts both "job_id" and "id" for the identifier; the
// server uses both depending on the endpoint.
func (j *Job) UnmarshalJSON(data []byte) error {
	type alias Job
	aux := struct {
		*alias
		AltID *int64 `json:"id"`
	}{alias: (*alias)(j)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if j.ID == 0 && aux.AltID != nil {
		j.ID = *aux.AltID
	}
	return nil
}

// AttackResult is one adversarial attempt's outcome within a job.
// Trajectory is algorithm-specific and treated as opaque.
type AttackResult struct {
	Objective  string           `json:"objective"`
	Success    bool             `json:"success"`
	Payload    string           `json:"payload,omitempty"`
	Output     string           `json:"output,omitempty"`
	Trajectory []map[string]any `json:"trajectory,omitempty"`
}

// JobResults pairs a job snapshot with its result set. The set is only
// fully known once the job is terminal; mid-run fetches are advisory
// and may grow on subsequent polls.
type JobResults struct {
	Job     Job            `json:"job"`
	Results []AttackResult `json:"results"`
}

// ResultFilter narrows a result set by success indicator.
type ResultFilter int

const (
	FilterAll ResultFilter = iota
	FilterSuccessful
	FilterFailed
)

// Apply returns the results matching the filter.
func (f ResultFilter) Apply(results []AttackResult) []AttackResult {
	if f == FilterAll {
		return results
	}
	filtered := make([]AttackResult, 0, len(results))
	for _, r := range results {
		if r.Success == (f == FilterSuccessful) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// SubmitJobRequest is the payload for submitting a new attack job.
type SubmitJobRequest struct {
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
}

// SubmitJobResponse is the server's answer to a job submission.
type SubmitJobResponse struct {
	JobID           int64     `json:"job_id"`
	Status          JobStatus `json:"status"`
	DatasetUsed     string    `json:"dataset_used,omitempty"`
	TotalObjectives int       `json:"total_objectives,omitempty"`
}

// ListJobsFilter narrows the jobs listing. Zero values mean no filtering.
type ListJobsFilter struct {
	Status JobStatus
	Limit  int
}

// Algorithm describes an attack algorithm the server can run.
type Algorithm struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Dataset is a named collection of attack objectives.
type Dataset struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Size        int            `json:"size"`
	Entries     []DatasetEntry `json:"entries,omitempty"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// DatasetEntry is a single goal/prompt pair within a dataset.
type DatasetEntry struct {
	ID        int64      `json:"id,omitempty"`
	Goal      string     `json:"goal"`
	Prompt    string     `json:"prompt"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
