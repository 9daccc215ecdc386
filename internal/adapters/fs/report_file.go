package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/spreads/internal/domain"
)

// DefaultReportName is the file written into the stage directory.
const DefaultReportName = "autocrop-report.json"

// ReportFileRepository implements ports.ReportRepository with a JSON file.
type ReportFileRepository struct {
	path string
}

// NewReportFileRepository stores the report as name inside dir.
func NewReportFileRepository(dir, name string) *ReportFileRepository {
	if name == "" {
		name = DefaultReportName
	}
	return &ReportFileRepository{path: filepath.Join(dir, name)}
}

// Load reads the last saved report.
// A missing file yields an empty report and no error.
func (r *ReportFileRepository) Load(ctx context.Context) (domain.Report, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Report{}, nil
		}
		return domain.Report{}, err
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

// Save replaces the report atomically (temp file in the same directory,
// then rename).
func (r *ReportFileRepository) Save(ctx context.Context, report domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, r.path)
}

// Path returns the full path to the report file.
func (r *ReportFileRepository) Path() string {
	return r.path
}
