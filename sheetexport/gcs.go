package sheetexport

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// newGCSClient prefers explicit credentials JSON, then Application Default
// Credentials.
func newGCSClient(ctx context.Context, credJSON string) (*storage.Client, error) {
	if strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// SnapshotObjectName is "<prefix>/<runID>/<yyyymmdd-hhmmss>.xlsx".
func SnapshotObjectName(prefix, runID string, at time.Time) string {
	return path.Join(strings.Trim(prefix, "/"), runID, at.UTC().Format("20060102-150405")+".xlsx")
}

// UploadSnapshot stores the workbook bytes in the bucket and returns the
// gs:// URI of the object.
func UploadSnapshot(ctx context.Context, bucket, object, credJSON string, data []byte) (string, error) {
	if bucket == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	ctx, span := tracer.Start(ctx, "gcs upload")
	defer span.End()

	client, err := newGCSClient(ctx, credJSON)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = xlsxContentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	return "gs://" + bucket + "/" + object, nil
}
