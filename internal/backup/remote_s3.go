package backup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"schema-vault/internal/config"
)

// S3Target uploads exported archives to an S3 bucket
type S3Target struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3Target creates an S3 archive target from configuration
func NewS3Target(cfg config.S3Config) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, NewConfigurationError("S3 bucket is required", nil)
	}
	if cfg.Region == "" {
		return nil, NewConfigurationError("S3 region is required", nil)
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, NewStorageError("failed to create AWS session", err)
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Target{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

// Upload stores an archive under the configured prefix and returns its
// s3:// location
func (t *S3Target) Upload(key string, data []byte) (string, error) {
	objectKey := t.prefix + key

	_, err := t.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]*string{
			"exported-by": aws.String("schema-vault"),
		},
	})
	if err != nil {
		return "", NewStorageError("failed to upload archive to S3", err)
	}

	return fmt.Sprintf("s3://%s/%s", t.bucket, objectKey), nil
}
