package dumper

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TCPConnection writes each payload as one base64 line to a dump server.
// The connection is dialed lazily and redialed after a failed write.
type TCPConnection struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewTCPConnection returns a connection to addr. timeout bounds both dialing
// and each write; zero means one second.
func NewTCPConnection(addr string, timeout time.Duration) *TCPConnection {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &TCPConnection{addr: addr, timeout: timeout}
}

// Target returns the server address.
func (c *TCPConnection) Target() string {
	return c.addr
}

// Write sends payload followed by a newline.
func (c *TCPConnection) Write(ctx context.Context, payload []byte, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		d := net.Dialer{Timeout: c.timeout}
		conn, err := d.DialContext(ctx, "tcp", c.addr)
		if err != nil {
			return newConnectionError(c.addr, err)
		}
		c.conn = conn
	}

	line := make([]byte, base64.StdEncoding.EncodedLen(len(payload))+1)
	base64.StdEncoding.Encode(line, payload)
	line[len(line)-1] = '\n'

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		c.drop()
		return newConnectionError(c.addr, err)
	}
	if _, err := c.conn.Write(line); err != nil {
		c.drop()
		return newConnectionError(c.addr, err)
	}
	return nil
}

// Close closes the socket if one is open.
func (c *TCPConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *TCPConnection) drop() {
	_ = c.conn.Close()
	c.conn = nil
}

// Redis stream fields.
const (
	redisFieldPayload     = "d"
	redisFieldContentType = "content_type"
)

// RedisConnection appends payloads to a Redis stream.
type RedisConnection struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisConnection returns a connection appending to stream. The stream is
// trimmed to roughly maxLen entries; zero keeps everything.
func NewRedisConnection(client redis.UniversalClient, stream string, maxLen int64) *RedisConnection {
	return &RedisConnection{client: client, stream: stream, maxLen: maxLen}
}

// Target returns the stream name.
func (c *RedisConnection) Target() string {
	return c.stream
}

// Write appends one entry holding payload and its content type.
func (c *RedisConnection) Write(ctx context.Context, payload []byte, contentType string) error {
	args := &redis.XAddArgs{
		Stream: c.stream,
		Values: map[string]any{
			redisFieldPayload:     payload,
			redisFieldContentType: contentType,
		},
	}
	if c.maxLen > 0 {
		args.MaxLen = c.maxLen
		args.Approx = true
	}
	if err := c.client.XAdd(ctx, args).Err(); err != nil {
		return newConnectionError(c.stream, err)
	}
	return nil
}

// PayloadHandler receives raw payloads read back from a stream.
type PayloadHandler func(ctx context.Context, payload []byte, contentType string) error

// Subscribe reads entries after lastID ("$" for new entries only) and hands
// them to handler until ctx is done or handler fails.
func (c *RedisConnection) Subscribe(ctx context.Context, lastID string, handler PayloadHandler) error {
	if lastID == "" {
		lastID = "$"
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{c.stream, lastID},
			Count:   16,
			Block:   time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return newConnectionError(c.stream, err)
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				payload, ok := msg.Values[redisFieldPayload].(string)
				if !ok {
					continue
				}
				contentType, _ := msg.Values[redisFieldContentType].(string)
				if err := handler(ctx, []byte(payload), contentType); err != nil {
					return err
				}
			}
		}
	}
}

// Close closes the Redis client.
func (c *RedisConnection) Close() error {
	return c.client.Close()
}
