package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	summaryFile  = "summary.yaml"
	manifestFile = "manifest.yaml"
)

// Manifest describes the files of one report run.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Format      Format    `yaml:"format"`
	Tables      []string  `yaml:"tables"`
	Summary     string    `yaml:"summary,omitempty"`
}

// Run writes every table and the summaries of one analytics run into
// <dir>/<run id>/.
type Run struct {
	ID     string
	Dir    string
	Format Format
	writer *TableWriter
}

// NewRun prepares a run folder under dir.
func NewRun(dir string, format Format) (*Run, error) {
	if !format.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported report format %q", format)
	}

	id := uuid.New().String()
	runDir := filepath.Join(dir, id)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create run directory", err)
	}

	writer := NewTableWriter()
	if err := writer.Initialize(); err != nil {
		return nil, err
	}

	return &Run{ID: id, Dir: runDir, Format: format, writer: writer}, nil
}

// WriteTables exports each table as <name><ext>.
func (r *Run) WriteTables(tables []types.Table) ([]string, error) {
	paths := make([]string, 0, len(tables))

	for _, table := range tables {
		path := filepath.Join(r.Dir, table.Name+r.Format.Extension())
		if err := r.writer.Write(table, path, r.Format); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// WriteSummaries writes summaries as YAML into the run folder.
func (r *Run) WriteSummaries(summaries []types.PerformanceSummary) (string, error) {
	path := filepath.Join(r.Dir, summaryFile)

	return path, WriteSummaryYAML(path, summaries)
}

// Finish writes the manifest and closes the writer.
func (r *Run) Finish(generatedAt time.Time, tables []string, summary string) error {
	defer r.Close()

	names := make([]string, len(tables))
	for i, path := range tables {
		names[i] = filepath.Base(path)
	}

	manifest := Manifest{
		RunID:       r.ID,
		GeneratedAt: generatedAt,
		Format:      r.Format,
		Tables:      names,
	}

	if summary != "" {
		manifest.Summary = filepath.Base(summary)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to marshal manifest", err)
	}

	if err := os.WriteFile(filepath.Join(r.Dir, manifestFile), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write manifest", err)
	}

	return nil
}

// Close releases the table writer. Finish calls it.
func (r *Run) Close() error {
	return r.writer.Close()
}

// WriteSummaryYAML writes summaries to path.
func WriteSummaryYAML(path string, summaries []types.PerformanceSummary) error {
	if err := types.WritePerformanceSummary(path, summaries); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write summary", err)
	}

	return nil
}
