package cache

import (
	"context"
	"time"
)

// Noop is used when Redis is not configured: every read misses and writes vanish
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, ...string) error { return nil }

func (Noop) DeletePrefix(context.Context, string) error { return nil }

func (Noop) Publish(context.Context, string, interface{}) error { return nil }
