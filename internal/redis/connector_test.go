package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    time.Second,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		PoolSize:       2,
		ConnectTimeout: 2 * time.Second,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        200 * time.Millisecond,
		PingTimeout:    500 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestNew(t *testing.T) {
	log := logger.New("error", false)

	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := New(context.Background(), testOptions(mr.Addr()), log)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer client.Close()
		if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
			t.Errorf("client unusable: %v", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		if _, err := New(context.Background(), testOptions(""), log); !errors.Is(err, ErrDisabled) {
			t.Errorf("err = %v, want ErrDisabled", err)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		opts := testOptions("localhost:1")
		opts.ConnectTimeout = 0
		if _, err := New(context.Background(), opts, log); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("unreachable times out", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		opts := testOptions(addr)
		opts.ConnectTimeout = 300 * time.Millisecond
		start := time.Now()
		if _, err := New(context.Background(), opts, log); err == nil {
			t.Fatal("expected connection error")
		}
		if time.Since(start) > 2*time.Second {
			t.Errorf("gave up too late: %v", time.Since(start))
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		RedisAddr:           "cache:6379",
		RedisDB:             2,
		RedisPoolSize:       7,
		RedisConnectTimeout: 9 * time.Second,
	}
	got := OptionsFromConfig(cfg)
	if got.Addr != "cache:6379" || got.RedisDB != 2 || got.PoolSize != 7 || got.ConnectTimeout != 9*time.Second {
		t.Errorf("OptionsFromConfig() = %+v", got)
	}
}
