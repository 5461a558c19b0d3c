package core

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyExports is returned when no export slot frees up in time.
var ErrTooManyExports = errors.New("too many concurrent exports, please try again later")

const (
	DefaultMaxConcurrentExports = 4
	DefaultExportWaitTime       = 10 * time.Second
)

// ExportLimiter caps how many workbooks are built at once. Each export holds
// its whole workbook in memory until it is written out.
type ExportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewExportLimiter allows maxConcurrent exports at once; a caller waits at
// most maxWait for a slot. Non-positive arguments take the defaults.
func NewExportLimiter(maxConcurrent int, maxWait time.Duration) *ExportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultExportWaitTime
	}
	return &ExportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. It returns ErrTooManyExports once maxWait passes, or
// ctx's error if ctx ends first. Every nil return must be paired with Release.
func (l *ExportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyExports
	}
}

// Release frees a slot taken by Acquire.
func (l *ExportLimiter) Release() {
	<-l.slots
}

// ActiveCount returns the number of exports holding a slot.
func (l *ExportLimiter) ActiveCount() int {
	return len(l.slots)
}

// WaitForDrain blocks until every running export has released its slot or
// ctx is done. It claims all slots while waiting, so no new export starts.
func (l *ExportLimiter) WaitForDrain(ctx context.Context) error {
	held := 0
	defer func() {
		for range held {
			<-l.slots
		}
	}()

	for held < cap(l.slots) {
		select {
		case l.slots <- struct{}{}:
			held++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ExportLimiterStatus is a snapshot for the status endpoint.
type ExportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *ExportLimiter) Status() ExportLimiterStatus {
	active := len(l.slots)
	return ExportLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
