package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"armada/pkg/atomicfile"
)

// S3OutputStore persists run output in S3-compatible storage.
type S3OutputStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3OutputStoreConfig holds S3 configuration
type S3OutputStoreConfig struct {
	Bucket          string
	Prefix          string // e.g. "output/runs/"
	Region          string
	Endpoint        string // For MinIO/local S3
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3OutputStore creates a new S3-backed output store
func NewS3OutputStore(cfg S3OutputStoreConfig) (*S3OutputStore, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	// Custom credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	}

	return &S3OutputStore{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Store uploads run output to S3.
func (s *S3OutputStore) Store(ctx context.Context, runID string, output []byte) (string, error) {
	key := s.buildKey(runID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(output),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload output to S3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Retrieve fetches run output from S3.
func (s *S3OutputStore) Retrieve(ctx context.Context, reference string) ([]byte, error) {
	key := s.extractKey(reference)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get output from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

func (s *S3OutputStore) buildKey(runID string) string {
	day := time.Now().Format("2006/01/02")
	return fmt.Sprintf("%s%s/%s.log", s.prefix, day, runID)
}

func (s *S3OutputStore) extractKey(reference string) string {
	rest, ok := strings.CutPrefix(reference, "s3://")
	if !ok {
		return reference
	}
	if _, key, found := strings.Cut(rest, "/"); found {
		return key
	}
	return rest
}

// LocalOutputStore writes run output to the local filesystem. Each file is
// committed through atomicfile so a reader tailing the directory never sees
// a half-written output file.
type LocalOutputStore struct {
	basePath string
	umask    os.FileMode
}

// NewLocalOutputStore creates the base directory. umask governs the
// published file modes (0666 &^ umask); pass sysinfo.CurrentUmask() at
// startup to use the process default.
func NewLocalOutputStore(basePath string, umask os.FileMode) (*LocalOutputStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalOutputStore{basePath: basePath, umask: umask}, nil
}

// Store atomically writes run output to <base>/<runID>.log.
func (l *LocalOutputStore) Store(ctx context.Context, runID string, output []byte) (string, error) {
	path := filepath.Join(l.basePath, runID+".log")
	if err := atomicfile.WriteFile(path, output, l.umask); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return path, nil
}

// Retrieve reads run output from the local filesystem.
func (l *LocalOutputStore) Retrieve(ctx context.Context, reference string) ([]byte, error) {
	return os.ReadFile(reference)
}
