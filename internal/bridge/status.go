package bridge

import (
	"context"
	"encoding/json"
	"time"
)

// PublishStatus marshals and publishes the current status snapshot, retained,
// so late subscribers immediately see the installation's state.
func (b *Bridge) PublishStatus() error {
	snap := b.engine.Status()

	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return b.client.PublishRetained(b.topics.Status(), payload)
}

// RunStatusPublisher publishes the retained status at the given interval
// until ctx is cancelled. Publish failures (broker down, reconnecting) are
// logged at most once per failure streak rather than every interval.
func (b *Bridge) RunStatusPublisher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.PublishStatus(); err != nil {
				if !failing {
					b.log.Warn("status publish failing", "error", err)
					failing = true
				}
				continue
			}
			failing = false
		}
	}
}
