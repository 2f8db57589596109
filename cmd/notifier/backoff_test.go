package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowsAndCaps(t *testing.T) {
	b := &backoff{base: time.Second, max: 10 * time.Second}

	var got []time.Duration
	for range 6 {
		got = append(got, b.next())
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second,
	}, got)

	b.reset()
	assert.Equal(t, time.Second, b.next())
}

func TestBackoffWait(t *testing.T) {
	b := &backoff{base: time.Millisecond, max: time.Millisecond}
	assert.True(t, b.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b = &backoff{base: time.Hour, max: time.Hour}
	assert.False(t, b.wait(ctx))
}

func TestNewBackoffDefaults(t *testing.T) {
	b := newBackoff()
	assert.Equal(t, retryBaseDelay, b.next())
	for range 20 {
		b.next()
	}
	assert.Equal(t, retryMaxDelay, b.next())
}
