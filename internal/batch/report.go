package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ReportConfig is the configuration section of a batch report.
type ReportConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	ManifestPath string `yaml:"manifestpath"`
	Rows         int    `yaml:"rows"`
	Succeeded    int    `yaml:"succeeded"`
	Failed       int    `yaml:"failed"`
	Timestamp    string `yaml:"timestamp"`
}

type ReportResult struct {
	ID       string   `yaml:"id"`
	Status   string   `yaml:"status"`
	Prompt   string   `yaml:"prompt,omitempty"`
	Error    string   `yaml:"error,omitempty"`
	Files    []string `yaml:"files,omitempty"`
	Duration string   `yaml:"duration"`
}

type Report struct {
	Config  ReportConfig   `yaml:"config"`
	Results []ReportResult `yaml:"results"`
}

// NewReport summarises results.
func NewReport(provider, model, manifestPath string, results []RowResult) *Report {
	report := &Report{
		Config: ReportConfig{
			Provider:     provider,
			Model:        model,
			ManifestPath: manifestPath,
			Rows:         len(results),
			Timestamp:    time.Now().Format("2006-01-02_15-04-05"),
		},
		Results: make([]ReportResult, 0, len(results)),
	}

	for _, r := range results {
		status := "ok"
		if r.Error != "" {
			status = "failed"
			report.Config.Failed++
		} else {
			report.Config.Succeeded++
		}
		report.Results = append(report.Results, ReportResult{
			ID:       r.ID,
			Status:   status,
			Prompt:   r.Prompt,
			Error:    r.Error,
			Files:    r.Files,
			Duration: r.Duration.Round(time.Millisecond).String(),
		})
	}
	return report
}

// Save writes the report to dir and returns the file path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("report-%s.yaml", r.Config.Timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}
