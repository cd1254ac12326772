package domain

import (
	"context"
	"log/slog"
	"time"
)

// Keepalive は定期的にpingメッセージを送信する死活監視サービスです。
type Keepalive struct {
	pingInterval time.Duration
	sender       ActorID
	writeCh      chan<- []byte
}

// NewKeepalive は新しいKeepaliveを生成します。
func NewKeepalive(pingInterval time.Duration, sender ActorID, writeCh chan<- []byte) *Keepalive {
	return &Keepalive{
		pingInterval: pingInterval,
		sender:       sender,
		writeCh:      writeCh,
	}
}

// Run はpingInterval間隔でpingメッセージをwriteChに送信します。
// ctxがキャンセルされると終了します。
func (k *Keepalive) Run(ctx context.Context) {
	ticker := time.NewTicker(k.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingMsg := EncodePingMessage(k.sender)
			select {
			case k.writeCh <- pingMsg:
				slog.DebugContext(ctx, "keepalive: ping sent", "sender", k.sender)
			default:
				slog.WarnContext(ctx, "keepalive: writeCh full, ping dropped", "sender", k.sender)
			}
		}
	}
}
