package server

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// ScheduleUploads calls upload every interval until ctx is cancelled.
// The returned channel is closed once the loop has exited.
func ScheduleUploads(ctx context.Context, interval time.Duration, upload func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				nuts.L.Infof("[Server] Upload schedule stopped")
				return
			case <-ticker.C:
				if err := upload(ctx); err != nil {
					nuts.L.Errorf("[Server] Scheduled upload failed: %v", err)
				}
			}
		}
	}()
	return done
}
