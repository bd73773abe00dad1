package artifact

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis sink.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSink stores artifacts in Redis so that several agent instances share
// one set of artifacts. Content lives at <prefix>artifact:<path> and the
// path set at <prefix>artifacts.
type RedisSink struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}
	return NewRedisSinkWithClient(client, opts.KeyPrefix), nil
}

// NewRedisSinkWithClient wraps an existing client.
func NewRedisSinkWithClient(client redis.Cmdable, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "defai:"
	}
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) List(ctx context.Context) ([]string, error) {
	paths, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *RedisSink) Put(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.contentKey(path), content, 0).Err(); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", path, err)
	}
	if err := s.client.SAdd(ctx, s.indexKey(), path).Err(); err != nil {
		return fmt.Errorf("failed to index artifact %s: %w", path, err)
	}
	return nil
}

// Get returns the content stored at path.
func (s *RedisSink) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.contentKey(path)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("artifact %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return data, nil
}

func (s *RedisSink) indexKey() string {
	return s.prefix + "artifacts"
}

func (s *RedisSink) contentKey(path string) string {
	return s.prefix + "artifact:" + path
}

// Close releases the client when the sink owns one.
func (s *RedisSink) Close() error {
	if c, ok := s.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
