package main

import (
	"context"
	"time"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = time.Minute
)

// backoff 记录连续失败的次数，失败越多，重新入队前等待越久
type backoff struct {
	base     time.Duration
	max      time.Duration
	failures int
}

func newBackoff() *backoff {
	return &backoff{base: retryBaseDelay, max: retryMaxDelay}
}

func (b *backoff) next() time.Duration {
	d := b.base
	for i := 0; i < b.failures && d < b.max; i++ {
		d *= 2
	}
	b.failures++
	return min(d, b.max)
}

func (b *backoff) reset() {
	b.failures = 0
}

// wait 在 ctx 取消时提前返回 false
func (b *backoff) wait(ctx context.Context) bool {
	t := time.NewTimer(b.next())
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
