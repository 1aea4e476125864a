// storage/report_publisher.go
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/config"
)

var reportUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "datasetdoc_report_uploads_total",
		Help: "Report uploads to object storage",
	},
	[]string{"status"},
)

// ReportPublisher uploads finished reports to an S3-compatible bucket.
type ReportPublisher struct {
	client *minio.Client
	bucket string
	prefix string
	now    func() time.Time
	log    zerolog.Logger
}

func NewReportPublisher(cfg config.StorageConfig, log zerolog.Logger) (*ReportPublisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client for %s: %w", cfg.Endpoint, err)
	}
	return &ReportPublisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		now:    time.Now,
		log:    log,
	}, nil
}

// Publish uploads the report at reportPath, creating the bucket first if it
// does not exist, and returns the object key.
func (p *ReportPublisher) Publish(ctx context.Context, reportPath string) (string, error) {
	key, err := p.publish(ctx, reportPath)
	if err != nil {
		reportUploadsTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	reportUploadsTotal.WithLabelValues("success").Inc()
	return key, nil
}

func (p *ReportPublisher) publish(ctx context.Context, reportPath string) (string, error) {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
		}
		p.log.Info().Str("bucket", p.bucket).Msg("created report bucket")
	}

	key := objectKey(p.prefix, p.now())
	info, err := p.client.FPutObject(ctx, p.bucket, key, reportPath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to %s/%s: %w", reportPath, p.bucket, key, err)
	}
	p.log.Info().Str("bucket", p.bucket).Str("key", key).Int64("bytes", info.Size).Msg("published report")
	return key, nil
}

// objectKey names an upload after the UTC time it was made.
func objectKey(prefix string, t time.Time) string {
	name := "dataset_documentation_" + t.UTC().Format("20060102T150405Z") + ".csv"
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
