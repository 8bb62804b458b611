package logsink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"

	"armada/pkg/resilience"
)

// Transport delivers serialized records to a named append-only log stream.
type Transport interface {
	LogLine(ctx context.Context, stream string, record string) error
	Close() error
}

// FileTransport appends records to one file per stream under a base
// directory. Intended for single-node and development use.
type FileTransport struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileTransport creates the base directory if needed.
func NewFileTransport(dir string) (*FileTransport, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log stream directory: %w", err)
	}
	return &FileTransport{dir: dir, files: make(map[string]*os.File)}, nil
}

// LogLine appends the record, newline-terminated, to the stream's file.
func (t *FileTransport) LogLine(ctx context.Context, stream, record string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[stream]
	if !ok {
		var err error
		path := filepath.Join(t.dir, stream+".log")
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log stream %s: %w", stream, err)
		}
		t.files[stream] = f
	}

	_, err := f.WriteString(record + "\n")
	return err
}

// Close closes all open stream files.
func (t *FileTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for _, f := range t.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.files = make(map[string]*os.File)
	return firstErr
}

// RedisTransport appends records to Redis streams via XADD. An optional
// circuit breaker keeps a dead broker from stalling per-line emission.
type RedisTransport struct {
	client  *redis.Client
	breaker *resilience.CircuitBreaker
}

const redisStreamPrefix = "logs:"

// NewRedisTransport wraps an existing client. breaker may be nil.
func NewRedisTransport(client *redis.Client, breaker *resilience.CircuitBreaker) *RedisTransport {
	return &RedisTransport{client: client, breaker: breaker}
}

// LogLine appends the record to the stream key "logs:<stream>".
func (t *RedisTransport) LogLine(ctx context.Context, stream, record string) error {
	emit := func() error {
		return t.client.XAdd(ctx, &redis.XAddArgs{
			Stream: redisStreamPrefix + stream,
			Values: map[string]interface{}{"record": record},
		}).Err()
	}
	if t.breaker != nil {
		return t.breaker.Execute(ctx, emit)
	}
	return emit()
}

// Close closes the underlying client.
func (t *RedisTransport) Close() error {
	return t.client.Close()
}
