package library

import (
	"context"
	"time"
)

// maxErrorMessageLen bounds what gets persisted onto a queue item.
const maxErrorMessageLen = 500

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// sleepCtx waits for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func truncateMessage(msg string) string {
	if len(msg) > maxErrorMessageLen {
		return msg[:maxErrorMessageLen]
	}
	return msg
}
