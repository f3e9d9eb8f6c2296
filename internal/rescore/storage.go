package rescore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenstart/esgscope/pkg/config"
)

// ReportStorage archives rendered score reports as JSON blobs.
type ReportStorage interface {
	PutReport(ctx context.Context, companyID, reportID string, data []byte) (string, error)
	GetReport(ctx context.Context, ref string) ([]byte, error)
}

// ErrReportNotFound is returned when an archived report does not exist.
var ErrReportNotFound = errors.New("report not found")

func reportKey(companyID, reportID string) string {
	return companyID + "/reports/" + reportID + ".json"
}

// NewReportStorage selects a backend from configuration.
func NewReportStorage(ctx context.Context, cfg config.StorageConfig) (ReportStorage, error) {
	switch cfg.Backend {
	case "s3":
		s, err := NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gcs":
		s, err := NewGCSStorage(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", "local":
		return NewLocalStorage(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LocalStorage implements ReportStorage on the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// PutReport writes the report and returns its storage reference.
func (s *LocalStorage) PutReport(_ context.Context, companyID, reportID string, data []byte) (string, error) {
	ref := reportKey(companyID, reportID)
	path := filepath.Join(s.BaseDir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", ref, err)
	}
	return ref, nil
}

// GetReport reads a report by reference.
func (s *LocalStorage) GetReport(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, filepath.FromSlash(ref)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ref, ErrReportNotFound)
	}
	return data, err
}
