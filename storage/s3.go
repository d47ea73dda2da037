package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"olx_harvester/config"
)

// DatasetExporter pushes harvest output CSVs to S3-compatible storage
// (AWS, DO Spaces, R2) so downstream analysis does not need shell access to
// the harvester host.
type DatasetExporter struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewDatasetExporter(ctx context.Context, cfg config.ExportConfig) (*DatasetExporter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &DatasetExporter{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// UploadFile uploads one local CSV under <prefix>/<stage>/<basename>.
func (e *DatasetExporter) UploadFile(ctx context.Context, stage, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := path.Join(e.prefix, stage, filepath.Base(localPath))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// ExportDir uploads every CSV in dir under the given stage name and returns
// the number uploaded. Per-file failures are collected, not fatal.
func (e *DatasetExporter) ExportDir(ctx context.Context, stage, dir string) (int, []error) {
	files, err := ListCSVFiles(dir, "")
	if err != nil {
		return 0, []error{err}
	}

	var uploaded int
	var errs []error
	for _, file := range files {
		if _, err := e.UploadFile(ctx, stage, file); err != nil {
			errs = append(errs, err)
			continue
		}
		uploaded++
	}
	return uploaded, errs
}
