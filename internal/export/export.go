// Package export writes job results to CSV and JSON sinks.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/generalanalysis/redit-cli/internal/client"
)

// ErrExport indicates the sink could not be written. No partial file is
// left behind on failure.
var ErrExport = errors.New("export failed")

// csvHeader is the column layout of a results CSV, one row per result.
var csvHeader = []string{
	"job_id",
	"job_description",
	"job_status",
	"job_asr",
	"objective",
	"success",
	"payload",
	"output",
	"trajectory_length",
	"trajectory",
	"created_at",
}

// WriteCSV writes results to a CSV file, one row per result with the
// job's fields flattened into each row. An empty result set produces a
// header-only file. The write is atomic: a temp file in the target
// directory is renamed into place only after a successful flush.
func WriteCSV(path string, job *client.Job, results []client.AttackResult) error {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, csvHeader)

	for _, r := range results {
		trajectory := ""
		if len(r.Trajectory) > 0 {
			buf, err := json.Marshal(r.Trajectory)
			if err != nil {
				return fmt.Errorf("%w: encode trajectory: %v", ErrExport, err)
			}
			trajectory = string(buf)
		}

		asr := ""
		if job.ASR != nil {
			asr = strconv.FormatFloat(*job.ASR, 'f', 4, 64)
		}

		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			job.Description,
			string(job.Status),
			asr,
			r.Objective,
			strconv.FormatBool(r.Success),
			r.Payload,
			r.Output,
			strconv.Itoa(len(r.Trajectory)),
			trajectory,
			job.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

// WriteJSON writes results to a JSON file as an array of result
// objects. An empty result set produces "[]", not an error.
func WriteJSON(path string, results []client.AttackResult) error {
	if results == nil {
		results = []client.AttackResult{}
	}
	buf, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode results: %v", ErrExport, err)
	}
	buf = append(buf, '\n')

	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(buf)
		return err
	})
}

// writeAtomic writes through a temp file in the destination directory
// and renames it into place, so a failed export never leaves a partial
// or truncated file at the target path.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ga-red-export-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file in %s: %v", ErrExport, dir, err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrExport, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename into place: %v", ErrExport, err)
	}
	return nil
}
