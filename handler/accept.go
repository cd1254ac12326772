package handler

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"

	adapterwebsocket "dogfight/adapter/websocket"
	"dogfight/domain"
)

// AcceptHandler は対戦相手のwebsocket接続を1本だけ受け付けます。
// マッチは常に2機で行われるため、2本目以降の接続は拒否されます。
type AcceptHandler struct {
	accepted    atomic.Bool
	transportCh chan<- domain.Transport
}

func NewAcceptHandler(transportCh chan<- domain.Transport) *AcceptHandler {
	return &AcceptHandler{transportCh: transportCh}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.accepted.CompareAndSwap(false, true) {
		slog.WarnContext(ctx, "rejecting extra peer connection", "remote", r.RemoteAddr)
		http.Error(w, "match already has a peer", http.StatusConflict)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 対戦相手は任意のoriginから接続できる
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		h.accepted.Store(false)
		return
	}

	slog.InfoContext(ctx, "peer connected", "remote", r.RemoteAddr)
	h.transportCh <- adapterwebsocket.NewTransportFrom(conn)
}
