// Package storage archives exported invoice PDFs in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
)

// PDFArchive stores rendered invoice documents.
type PDFArchive interface {
	// Archive stores the document under the invoice number and returns
	// the object key.
	Archive(ctx context.Context, invoiceNumber string, pdf []byte) (string, error)
}

// objectPutter is the subset of *s3.Client used by S3Archive.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive implements PDFArchive on an S3 bucket.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
	logger *logging.Logger
}

// NewS3Archive builds an S3 client from configuration. Static credentials
// are used when configured, otherwise the default AWS chain applies. A
// custom endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewS3Archive(ctx context.Context, cfg config.StorageConfig) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("pdf archive bucket is not configured")
	}

	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Archive(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Archive(client objectPutter, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logging.NewLogger("pdf-archive"),
	}
}

// Key returns the object key for an invoice number.
func (a *S3Archive) Key(invoiceNumber string) string {
	prefix := a.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + invoiceNumber + ".pdf"
}

// Archive uploads the document, replacing any earlier export.
func (a *S3Archive) Archive(ctx context.Context, invoiceNumber string, pdf []byte) (string, error) {
	key := a.Key(invoiceNumber)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		a.logger.Error("Failed to archive invoice PDF", logging.Fields{
			"bucket": a.bucket,
			"key":    key,
			"error":  err.Error(),
		})
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	a.logger.Info("Invoice PDF archived", logging.Fields{
		"bucket": a.bucket,
		"key":    key,
		"bytes":  len(pdf),
	})
	return key, nil
}
