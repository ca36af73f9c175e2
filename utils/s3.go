package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Proof screenshots live in an S3-compatible bucket (Cloudflare R2). The
// client is configured from env so the same code runs against AWS proper.

func storageConfig() (aws.Config, error) {
	accessKey := os.Getenv("S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("S3_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return aws.Config{}, fmt.Errorf("S3_ACCESS_KEY_ID or S3_SECRET_ACCESS_KEY not set")
	}

	return awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(envOr("S3_REGION", "auto")),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
}

func storageClient() (*s3.Client, error) {
	cfg, err := storageConfig()
	if err != nil {
		return nil, err
	}
	endpoint := os.Getenv("S3_ENDPOINT")
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func storageBucket() (string, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		return "", fmt.Errorf("S3_BUCKET_NAME not set")
	}
	return bucket, nil
}

// UploadProof stores a submission proof under the given object key and
// returns a presigned GET URL for review screens.
func UploadProof(objectName string, file io.Reader, expiry time.Duration) (string, error) {
	bucket, err := storageBucket()
	if err != nil {
		return "", err
	}
	client, err := storageClient()
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(objectName),
		Body:        file,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("proof upload failed: %w", err)
	}

	presigner := s3.NewPresignClient(client)
	presigned, err := presigner.PresignGetObject(context.TODO(),
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("presign proof URL: %w", err)
	}
	return presigned.URL, nil
}

// DeleteProof removes a stored proof object.
func DeleteProof(objectName string) error {
	bucket, err := storageBucket()
	if err != nil {
		return err
	}
	client, err := storageClient()
	if err != nil {
		return err
	}
	if _, err := client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectName),
	}); err != nil {
		return fmt.Errorf("proof delete failed: %w", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
