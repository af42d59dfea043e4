package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/astraboltz/configs"
)

// r2Store uploads media to Cloudflare R2 through its S3-compatible API.
type r2Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewR2Store(ctx context.Context, r2 cfg.R2) (MediaStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})

	publicURL := r2.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", r2.AccountID, r2.BucketName)
	}

	return &r2Store{
		client:    client,
		bucket:    r2.BucketName,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (r *r2Store) Save(ctx context.Context, id string, data []byte, mimeType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(id),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return r.publicURL + "/" + id, nil
}

func (r *r2Store) Remove(ctx context.Context, id string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *r2Store) Open(ctx context.Context, id string) ([]byte, string, bool) {
	return nil, "", false
}
