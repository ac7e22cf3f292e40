package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"texture-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CheckStructure returns the folders with no object under them. It fails when the bucket
// does not exist.
func CheckStructure(ctx context.Context, client storage.Client, bucket string, folders []string) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	missing := []string{}
	for _, folder := range folders {
		populated, err := hasObjects(ctx, client, bucket, folderPath(folder))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", folder, err)
		}
		if !populated {
			missing = append(missing, folder)
		}
	}
	return missing, nil
}

// hasObjects reports whether any object sits under prefix. The listing is cancelled after
// the first result so the lister goroutine exits.
func hasObjects(ctx context.Context, client storage.Client, bucket, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, MaxKeys: 1}) {
		return true, obj.Err
	}
	return false, nil
}

// FixStructure writes a zero-length marker for each missing folder, stopping at the
// first failure.
func FixStructure(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		marker := folderPath(folder)
		if _, err := client.PutObject(ctx, bucket, marker, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
			logger.Error("Failed to create folder marker", zap.String("marker", marker), zap.Error(err))
			return fmt.Errorf("create %s: %w", marker, err)
		}
		logger.Info("Created folder marker", zap.String("marker", marker))
	}
	return nil
}

func folderPath(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/"
}
