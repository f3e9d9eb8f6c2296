package rescore

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements ReportStorage on Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed ReportStorage using Application Default Credentials.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

// PutReport writes the report object and returns its name.
func (s *GCSStorage) PutReport(ctx context.Context, companyID, reportID string, data []byte) (string, error) {
	key := reportKey(companyID, reportID)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}
	return key, nil
}

// GetReport reads a report object by name.
func (s *GCSStorage) GetReport(ctx context.Context, ref string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(ref).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", ref, ErrReportNotFound)
		}
		return nil, fmt.Errorf("gcs read %s: %w", ref, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
