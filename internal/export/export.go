// Package export writes analysis reports to disk for downstream tooling.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handlens/handlens/analyzer"
)

// Report is the machine-readable result of one analysis pass.
type Report struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Config      analyzer.Config         `json:"config"`
	Hands       []analyzer.HandAnalysis `json:"hands"`
	Failed      []FailedHand            `json:"failed,omitempty"`
}

// FailedHand records a hand the pipeline rejected.
type FailedHand struct {
	HandID string `json:"hand_id"`
	Error  string `json:"error"`
}

// WriteJSON marshals the report and writes it atomically, so a reader
// polling the path never sees a partial file.
func WriteJSON(path string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(path, data, 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", filepath.Base(path), err)
	}
	return rep, nil
}

// writeAtomic stages the data in a temp file and renames it into place.
// The temp file lives in the target directory so the rename stays on one
// filesystem.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
