// Package storage archives rendered invoice PDFs in an S3-compatible bucket (R2, S3, MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"crm-backend/internal/config"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archive struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// New builds the archive client. An unconfigured archive is returned disabled rather than as an error.
func New(ctx context.Context, cfg *config.Config) (*Archive, error) {
	if !cfg.StorageEnabled() {
		return &Archive{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure object storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Archive{
		client:    client,
		bucket:    cfg.Storage.Bucket,
		publicURL: strings.TrimRight(cfg.Storage.PublicURL, "/"),
	}, nil
}

func (a *Archive) Enabled() bool {
	return a != nil && a.client != nil
}

// InvoiceKey is the object key a rendered invoice is stored under
func InvoiceKey(invoiceID string) string {
	return "invoices/" + invoiceID + ".pdf"
}

// PutInvoicePDF uploads the document and returns the URL it can be fetched from
func (a *Archive) PutInvoicePDF(ctx context.Context, key string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("object storage not configured")
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return a.url(key), nil
}

func (a *Archive) url(key string) string {
	if a.publicURL != "" {
		return a.publicURL + "/" + key
	}
	return "s3://" + a.bucket + "/" + key
}
