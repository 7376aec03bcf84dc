// Package report writes JSON run reports.
//
// Layout:
//   - report.json: run index (summary, one entry per flow)
//   - flows/flow-XXX.json: per-flow detail (steps, verdicts, artifacts)
//
// The index stays small so dashboards can poll it cheaply; the detail
// files carry everything needed to diagnose a failure without re-running.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/storefront-qa/storecheck/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Index is the run-level report file.
type Index struct {
	Version   string        `json:"version"`
	RunID     string        `json:"runId"`
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	BaseURL string `json:"baseUrl,omitempty"`
	Browser string `json:"browser,omitempty"`

	Summary Summary     `json:"summary"`
	Flows   []FlowEntry `json:"flows"`
}

// Summary is the flow count breakdown. Known-issue flows count as passed
// and are also reported on their own, so a run with suppressed defects
// never reads identically to a clean one.
type Summary struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	KnownIssue int `json:"knownIssue,omitempty"`
}

// FlowEntry is the index-level view of one flow.
type FlowEntry struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Scenario    string        `json:"scenario,omitempty"`
	Status      string        `json:"status"`
	Duration    time.Duration `json:"duration"`
	FailedStep  string        `json:"failedStep,omitempty"`
	KnownIssues []string      `json:"knownIssues,omitempty"`
	Detail      string        `json:"detail"` // Relative path of the detail file
}

// FlowDetail is the full record of one flow.
type FlowDetail struct {
	ID     string          `json:"id"`
	Result core.FlowResult `json:"result"`
}

// Meta carries run environment fields into the index.
type Meta struct {
	BaseURL string
	Browser string
}

// Write renders a finished suite result under outputDir and returns the
// path of the index file.
func Write(outputDir string, res core.SuiteResult, meta Meta) (string, error) {
	flowsDir := filepath.Join(outputDir, "flows")
	if err := os.MkdirAll(flowsDir, 0o755); err != nil {
		return "", err
	}

	index := Index{
		Version:   Version,
		RunID:     res.RunID,
		Name:      res.Name,
		Status:    runStatus(res),
		StartTime: res.StartTime,
		Duration:  res.Duration,
		BaseURL:   meta.BaseURL,
		Browser:   meta.Browser,
		Summary: Summary{
			Total:      res.TotalFlows,
			Passed:     res.PassedFlows,
			Failed:     res.FailedFlows,
			Skipped:    res.SkippedFlows,
			KnownIssue: res.KnownIssueFlows,
		},
		Flows: make([]FlowEntry, len(res.Flows)),
	}

	for i, fr := range res.Flows {
		id := fmt.Sprintf("flow-%03d", i)
		rel := filepath.Join("flows", id+".json")
		index.Flows[i] = FlowEntry{
			ID:          id,
			Name:        fr.Name,
			Scenario:    fr.Scenario,
			Status:      fr.Status.String(),
			Duration:    fr.Duration,
			FailedStep:  fr.FailedStep,
			KnownIssues: fr.KnownIssues,
			Detail:      rel,
		}
		if err := writeJSON(filepath.Join(outputDir, rel), FlowDetail{ID: id, Result: fr}); err != nil {
			return "", err
		}
	}

	indexPath := filepath.Join(outputDir, "report.json")
	if err := writeJSON(indexPath, index); err != nil {
		return "", err
	}
	return indexPath, nil
}

func runStatus(res core.SuiteResult) string {
	switch {
	case res.TotalFlows == 0:
		return core.StatusSkipped.String()
	case res.FailedFlows > 0:
		return core.StatusFailed.String()
	case res.KnownIssueFlows > 0:
		return core.StatusKnownIssue.String()
	default:
		return core.StatusPassed.String()
	}
}

// writeJSON writes via a temp file and rename, so a consumer polling the
// report never reads a half-written document.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
