// Package redis holds the Redis-backed adapters: the L2 layer of the report cache
// and the report-event publisher.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// OpsRecorder receives per-command timings from the client hook.
type OpsRecorder interface {
	ObserveRedisOp(operation, status string, d time.Duration)
	RedisConnectionError()
}

// NewClient parses redisURL, pings the server and returns a ready client.
// A non-nil recorder is installed as a command hook.
func NewClient(ctx context.Context, redisURL string, recorder OpsRecorder) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)
	if recorder != nil {
		client.AddHook(&metricsHook{recorder: recorder})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

type metricsHook struct {
	recorder OpsRecorder
}

var _ goredis.Hook = (*metricsHook)(nil)

func (h *metricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.recorder.RedisConnectionError()
		}
		return conn, err
	}
}

func (h *metricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.recorder.ObserveRedisOp(cmd.Name(), opStatus(err), time.Since(start))
		return err
	}
}

func (h *metricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.recorder.ObserveRedisOp("pipeline", opStatus(err), time.Since(start))
		return err
	}
}

func opStatus(err error) string {
	if err != nil && err != goredis.Nil {
		return "error"
	}
	return "success"
}
