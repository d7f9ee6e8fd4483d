package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mpapenbr/racelog-report/log"
)

const (
	defaultRetryInterval = 200 * time.Millisecond
	defaultMaxRetries    = 2
)

type RetryOption func(*retryConfig)

type retryConfig struct {
	interval   time.Duration
	maxRetries uint64
	log        *log.Logger
}

func WithRetryInterval(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.interval = d }
}

func WithMaxRetries(n uint64) RetryOption {
	return func(c *retryConfig) { c.maxRetries = n }
}

func WithRetryLogger(l *log.Logger) RetryOption {
	return func(c *retryConfig) { c.log = l }
}

// RetryTransient runs op and retries it only while it fails with a transient
// I/O error. Any other error is returned immediately.
func RetryTransient(ctx context.Context, op func() error, opts ...RetryOption) error {
	cfg := &retryConfig{
		interval:   defaultRetryInterval,
		maxRetries: defaultMaxRetries,
		log:        log.Default().Named("retry"),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.interval), cfg.maxRetries),
		ctx)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		cfg.log.Warn("transient error, retrying",
			log.Int("attempt", attempt), log.ErrorField(err))
		return err
	}, b)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

// IsTransient reports whether err is worth retrying: a busy or temporarily
// unavailable resource or a timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
