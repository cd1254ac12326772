package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LinkState はピアリンクの状態です。
type LinkState int32

const (
	LinkConnecting LinkState = iota
	LinkHandshaking
	LinkSynchronized
	LinkClosed
)

var (
	// ErrProtocolMismatch はハンドシェイクでのプロトコルバージョン
	// 不一致を表します。マッチは開始されません。
	ErrProtocolMismatch = errors.New("incompatible protocol versions")
	// ErrHandshakeFailed はバージョン不一致以外の理由でハンドシェイク
	// が成立しなかったことを表します。
	ErrHandshakeFailed = errors.New("handshake failed")
	// ErrLinkClosedByPeer は相手側の明示的な離脱を表します。
	ErrLinkClosedByPeer = errors.New("link closed by peer")
	// ErrLinkFailure は接続リセット・タイムアウト等の回復不能な
	// リンク障害を表します。マッチ終了の決定要因になります。
	ErrLinkFailure = errors.New("link failure")
	// ErrLinkNotSynchronized は同期確立前の送信要求に返されます。
	ErrLinkNotSynchronized = errors.New("link is not synchronized")
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
)

const (
	handshakeTimeout = 10 * time.Second
	idleTimeout      = 15 * time.Second
	pingInterval     = 5 * time.Second

	// デコード失敗のエスカレーション窓。単発の不正メッセージは破棄に
	// 留めるが、窓内で閾値を超えた場合はリンク障害として扱う
	decodeErrWindow    = 5 * time.Second
	decodeErrThreshold = 8
)

// PeerLink はネットワーク接続のライフサイクルを所有します。
// ハンドシェイク、tickごとの入力交換、切断検出を担当し、
// 接続ハンドルへの生I/Oは本リンクのみが行います。
type PeerLink struct {
	ctx    context.Context
	cancel context.CancelFunc

	conn    *Connection
	session *Session

	local   ActorID
	remote  ActorID
	matchID uuid.UUID

	state atomic.Int32

	ctrlCh  chan linkEvent // 制御用チャネル
	writeCh chan []byte    // 書き込み用チャネル

	// 受信した相手入力の単一スロット（最新優先）
	remoteMu     sync.Mutex
	remoteIntent Intent
	remoteFilled bool
	notifyCh     chan struct{}

	decodeMu    sync.Mutex
	decodeTimes []time.Time

	// lifecycle
	closed  atomic.Bool
	linkErr atomic.Pointer[error]
	doneCh  chan struct{}
}

// NewPeerLink は確立済みのトランスポート上にリンクを生成します。
// ハンドシェイク完了までtick入力は流れません。
func NewPeerLink(transport Transport) *PeerLink {
	ctx, cancel := context.WithCancel(context.Background())
	return &PeerLink{
		ctx:      ctx,
		cancel:   cancel,
		conn:     NewConnection(transport),
		session:  NewSession(),
		ctrlCh:   make(chan linkEvent, 16),
		writeCh:  make(chan []byte, 64),
		notifyCh: make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}
}

func (pl *PeerLink) State() LinkState {
	return LinkState(pl.state.Load())
}

func (pl *PeerLink) LocalActor() ActorID  { return pl.local }
func (pl *PeerLink) RemoteActor() ActorID { return pl.remote }
func (pl *PeerLink) MatchID() uuid.UUID   { return pl.matchID }

// Done はリンクがClosedに達すると閉じられるチャネルを返します。
func (pl *PeerLink) Done() <-chan struct{} { return pl.doneCh }

// Err はリンクを終了させた原因を返します。自発的な終了ではnilです。
func (pl *PeerLink) Err() error {
	if p := pl.linkErr.Load(); p != nil {
		return *p
	}
	return nil
}

// HandshakeHost はホスト側のハンドシェイクを実行します。
// 自分をPlayerOneとし、相手にPlayerTwoとマッチIDを割り当てます。
// バージョン不一致はErrProtocolMismatchで中断されます。
func (pl *PeerLink) HandshakeHost(ctx context.Context) error {
	pl.state.Store(int32(LinkHandshaking))
	pl.local = PlayerOne
	pl.remote = PlayerTwo
	pl.matchID = uuid.New()

	hello := EncodeHelloMessage(pl.local, pl.remote, pl.matchID)
	if err := pl.conn.Write(ctx, hello); err != nil {
		return pl.failHandshake(fmt.Errorf("%w: %v", ErrLinkFailure, err))
	}

	msg, err := pl.readHello(ctx)
	if err != nil {
		return pl.failHandshake(err)
	}
	if msg.Hello.MatchID != pl.matchID || msg.Hello.AssignedActor != pl.local {
		return pl.failHandshake(fmt.Errorf("%w: unexpected hello echo", ErrHandshakeFailed))
	}

	pl.state.Store(int32(LinkSynchronized))
	slog.InfoContext(ctx, "handshake complete",
		"role", "host", "local", pl.local, "matchID", pl.matchID)
	return nil
}

// HandshakeJoin は参加側のハンドシェイクを実行します。
// ホストのHelloからActorIDの割り当てとマッチIDを受け取り、
// 確認のHelloを返します。
func (pl *PeerLink) HandshakeJoin(ctx context.Context) error {
	pl.state.Store(int32(LinkHandshaking))

	msg, err := pl.readHello(ctx)
	if err != nil {
		return pl.failHandshake(err)
	}

	pl.local = msg.Hello.AssignedActor
	pl.remote = msg.Header.Actor
	pl.matchID = msg.Hello.MatchID
	if pl.local == pl.remote {
		return pl.failHandshake(fmt.Errorf("%w: actor assignment collision", ErrHandshakeFailed))
	}

	echo := EncodeHelloMessage(pl.local, pl.remote, pl.matchID)
	if err := pl.conn.Write(ctx, echo); err != nil {
		return pl.failHandshake(fmt.Errorf("%w: %v", ErrLinkFailure, err))
	}

	pl.state.Store(int32(LinkSynchronized))
	slog.InfoContext(ctx, "handshake complete",
		"role", "join", "local", pl.local, "matchID", pl.matchID)
	return nil
}

// readHello はハンドシェイクの相手Helloを期限付きで待ちます。
func (pl *PeerLink) readHello(ctx context.Context) (*Message, error) {
	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	data, err := pl.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkFailure, err)
	}
	msg, err := DecodeMessage(data)
	if err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return nil, ErrProtocolMismatch
		}
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if msg.Hello == nil {
		return nil, fmt.Errorf("%w: expected hello, got dataType=%d", ErrHandshakeFailed, msg.Header.DataType)
	}
	return msg, nil
}

func (pl *PeerLink) failHandshake(err error) error {
	pl.closeWith(err)
	return err
}

// Run はハンドシェイク済みのリンクの送受信ループを駆動します。
// リンクがClosedに達すると戻り、終了原因をErrで報告します。
func (pl *PeerLink) Run(ctx context.Context) error {
	if pl.State() != LinkSynchronized {
		return ErrLinkNotSynchronized
	}

	// 外側のctxキャンセルをリンク終了へ伝播させる
	go func() {
		select {
		case <-ctx.Done():
			pl.closeWith(nil)
		case <-pl.ctx.Done():
		}
	}()

	keepalive := NewKeepalive(pingInterval, pl.local, pl.writeCh)

	eg, egCtx := errgroup.WithContext(pl.ctx)
	eg.Go(func() error {
		pl.ownerLoop(egCtx)
		return nil
	})
	eg.Go(func() error {
		pl.readLoop(egCtx)
		return nil
	})
	eg.Go(func() error {
		pl.writeLoop(egCtx)
		return nil
	})
	eg.Go(func() error {
		keepalive.Run(egCtx)
		return nil
	})

	_ = eg.Wait()
	pl.closeWith(nil)
	return pl.Err()
}

// SendIntent は自分の入力を相手へ送信キューに入れます。
func (pl *PeerLink) SendIntent(in Intent) error {
	if pl.closed.Load() {
		return ErrLinkFailure
	}
	if pl.State() != LinkSynchronized {
		return ErrLinkNotSynchronized
	}
	select {
	case pl.writeCh <- EncodeIntentMessage(in):
		return nil
	default:
		return ErrBackpressure
	}
}

// SendQuit は明示的な離脱を相手へ通知します。リンク終了の直前に
// 呼ばれるため、書き込みループを経由せず同期的に送信します。
// 送信はベストエフォートです。
func (pl *PeerLink) SendQuit(tick uint32) {
	if pl.closed.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = pl.conn.Write(ctx, EncodeQuitMessage(pl.local, tick))
}

// RemoteNotify は相手入力の到着を通知するチャネルを返します。
func (pl *PeerLink) RemoteNotify() <-chan struct{} { return pl.notifyCh }

// LatestRemote は受信済みの最新の相手入力を取り出します。
// スロットは単一で、取り出しまでに複数届いた場合は最新のみが残ります。
func (pl *PeerLink) LatestRemote() (Intent, bool) {
	pl.remoteMu.Lock()
	defer pl.remoteMu.Unlock()
	if !pl.remoteFilled {
		return Intent{}, false
	}
	pl.remoteFilled = false
	return pl.remoteIntent, true
}

// Close はリンクを自発的に終了します。任意のゴルーチンから安全に
// 呼び出せ、冪等です。
func (pl *PeerLink) Close() {
	pl.closeWith(nil)
}

// ownerLoop は制御イベントを集約し、リンクの終了判定を行う唯一の
// 関数です。無応答検出もここで行います。
func (pl *PeerLink) ownerLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-pl.ctrlCh:
			pl.handleLinkEvent(ctx, ev)
		case <-ticker.C:
			if idle, reason := pl.session.IsIdle(idleTimeout); idle {
				pl.closeWith(fmt.Errorf("%w: peer idle (%s)", ErrLinkFailure, reason))
			}
		}
	}
}

func (pl *PeerLink) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			data, err := pl.conn.Read(ctx)
			if err != nil {
				pl.sendCtrlEvent(ctx, linkEvent{kind: evReadError, err: err})
				return
			}
			pl.session.TouchRead()
			pl.handleData(ctx, data)
		}
	}
}

func (pl *PeerLink) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-pl.writeCh:
			if err := pl.conn.Write(ctx, data); err != nil {
				pl.sendCtrlEvent(ctx, linkEvent{kind: evWriteError, err: err})
				return
			}
		}
	}
}

func (pl *PeerLink) handleData(ctx context.Context, data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		// 単発の不正メッセージは破棄のみ。頻発時はエスカレーション
		slog.WarnContext(ctx, "dropping malformed message", "err", err)
		if pl.recordDecodeError() {
			pl.sendCtrlEvent(ctx, linkEvent{kind: evDecodeStorm, err: err})
		}
		return
	}

	switch msg.Header.DataType {
	case DataTypeIntent:
		if msg.Header.Actor != pl.remote {
			slog.WarnContext(ctx, "dropping intent with unexpected actor",
				"actor", msg.Header.Actor, "want", pl.remote)
			return
		}
		pl.storeRemote(msg.AsIntent())
	case DataTypeControl:
		pl.handleControlMessage(ctx, ControlSubType(msg.Header.SubType), msg)
	}
}

func (pl *PeerLink) handleControlMessage(ctx context.Context, sub ControlSubType, msg *Message) {
	switch sub {
	case ControlSubTypePing:
		select {
		case pl.writeCh <- EncodePongMessage(pl.local):
		default:
			slog.WarnContext(ctx, "writeCh full, pong dropped")
		}
	case ControlSubTypePong:
		pl.session.TouchPong()
	case ControlSubTypeQuit:
		slog.InfoContext(ctx, "peer quit", "tick", msg.Header.Tick)
		pl.closeWith(ErrLinkClosedByPeer)
	case ControlSubTypeHello:
		// 同期確立後のHelloは想定外。無害なので破棄のみ
		slog.WarnContext(ctx, "unexpected hello after synchronization")
	}
}

// storeRemote は相手入力を単一スロットへ格納します。最新tick優先。
func (pl *PeerLink) storeRemote(in Intent) {
	pl.remoteMu.Lock()
	if pl.remoteFilled && in.Tick < pl.remoteIntent.Tick {
		pl.remoteMu.Unlock()
		return
	}
	pl.remoteIntent = in
	pl.remoteFilled = true
	pl.remoteMu.Unlock()

	select {
	case pl.notifyCh <- struct{}{}:
	default:
	}
}

// recordDecodeError はデコード失敗を記録し、窓内の失敗数が閾値を
// 超えた場合にtrueを返します。
func (pl *PeerLink) recordDecodeError() bool {
	now := time.Now()
	pl.decodeMu.Lock()
	defer pl.decodeMu.Unlock()

	kept := pl.decodeTimes[:0]
	for _, t := range pl.decodeTimes {
		if now.Sub(t) <= decodeErrWindow {
			kept = append(kept, t)
		}
	}
	pl.decodeTimes = append(kept, now)
	return len(pl.decodeTimes) >= decodeErrThreshold
}

// handleLinkEvent は制御イベントを処理しリンク状態を更新する唯一の関数です。
func (pl *PeerLink) handleLinkEvent(ctx context.Context, ev linkEvent) {
	switch ev.kind {
	case evClose:
		pl.closeWith(ev.err)
	case evReadError, evWriteError:
		if pl.closed.Load() {
			return
		}
		pl.closeWith(fmt.Errorf("%w: %v", ErrLinkFailure, ev.err))
	case evDecodeStorm:
		pl.closeWith(fmt.Errorf("%w: repeated decode failures: %v", ErrLinkFailure, ev.err))
	default:
		slog.WarnContext(ctx, "unknown link event kind", "kind", ev.kind)
	}
}

func (pl *PeerLink) sendCtrlEvent(ctx context.Context, ev linkEvent) {
	select {
	case pl.ctrlCh <- ev:
	case <-ctx.Done():
	}
}

func (pl *PeerLink) closeWith(err error) {
	if !pl.closed.CompareAndSwap(false, true) {
		return
	}
	if err != nil {
		pl.linkErr.Store(&err)
	}
	pl.state.Store(int32(LinkClosed))
	pl.cancel()
	pl.session.Close()
	pl.conn.Close()
	close(pl.doneCh)
}
