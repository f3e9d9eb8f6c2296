package rescore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/greenstart/esgscope/pkg/config"
)

func TestLocalStoragePutGetReport(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"overallScore":61}`)
	ref, err := s.PutReport(ctx, "company1", "r1", data)
	if err != nil {
		t.Fatalf("PutReport: %v", err)
	}
	if ref != "company1/reports/r1.json" {
		t.Errorf("ref = %q, want company1/reports/r1.json", ref)
	}

	got, err := s.GetReport(ctx, ref)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetReport = %q, want %q", got, data)
	}

	expectedPath := filepath.Join(dir, "company1", "reports", "r1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.GetReport(context.Background(), "company1/reports/missing.json")
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestNewReportStorage(t *testing.T) {
	ctx := context.Background()

	rs, err := NewReportStorage(ctx, config.StorageConfig{Backend: "local", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("local backend: %v", err)
	}
	if _, ok := rs.(*LocalStorage); !ok {
		t.Errorf("expected *LocalStorage, got %T", rs)
	}

	if _, err := NewReportStorage(ctx, config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestS3OptionsCustomEndpoint(t *testing.T) {
	if opts := s3Options(S3Config{}); len(opts) != 0 {
		t.Errorf("expected no options without endpoint, got %d", len(opts))
	}
	if opts := s3Options(S3Config{Endpoint: "http://localhost:9000"}); len(opts) != 1 {
		t.Errorf("expected one option with endpoint, got %d", len(opts))
	}
}
