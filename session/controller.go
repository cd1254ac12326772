package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	adapterwebsocket "dogfight/adapter/websocket"
	"dogfight/domain"
	"dogfight/game"
	"dogfight/server"
)

// Reason はマッチ終了の要因です。外部のUI層が「撃墜による決着」
// 「相手の切断」「バージョン非互換」を区別して表示できるよう、
// 終了要因は常に区別して報告されます。
type Reason uint8

const (
	ReasonUnknown Reason = iota
	ReasonPlaneDown
	ReasonPeerDisconnected
	ReasonVersionMismatch
	ReasonQuit
)

func (r Reason) String() string {
	switch r {
	case ReasonPlaneDown:
		return "plane down"
	case ReasonPeerDisconnected:
		return "peer disconnected"
	case ReasonVersionMismatch:
		return "version mismatch"
	case ReasonQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Result はマッチの結末です。Finalは最後に確定したスナップショットで、
// 終了後の表示のために保持されます。
type Result struct {
	Reason Reason
	Final  game.World
}

// Controller はシミュレーションループを入力源へ束縛します。
// Localモードでは2つのローカル入力源、Networkモードではローカル
// 入力源1つとPeerLinkを束ね、マッチ終了を判定する唯一の権威です。
type Controller struct {
	cfg game.Config
}

func NewController(cfg game.Config) *Controller {
	return &Controller{cfg: cfg}
}

// RunLocal は2つのローカル入力源でマッチを実行します。
// シリアライズは行われず、両入力はループへ直接投入されます。
func (c *Controller) RunLocal(ctx context.Context, a, b IntentProvider) (Result, error) {
	loop := game.NewLoop(c.cfg)
	snaps := loop.Subscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(runCtx)
	eg.Go(func() error {
		defer cancel()
		if err := loop.Run(egCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		for {
			select {
			case <-egCtx.Done():
				return nil
			case snap := <-snaps:
				next := snap.Tick + 1
				loop.Submit(a.Intent(snap, next))
				loop.Submit(b.Intent(snap, next))
			}
		}
	})

	if err := eg.Wait(); err != nil {
		return Result{Reason: ReasonUnknown, Final: loop.Snapshot()}, err
	}

	final := loop.Snapshot()
	reason := ReasonQuit
	if final.Over() {
		reason = ReasonPlaneDown
	}
	return Result{Reason: reason, Final: final}, nil
}

// RunServer はホスト役としてマッチを実行します。bindAddrで相手を
// 1機だけ受け付け、ハンドシェイク後に同期対戦へ移行します。
func (c *Controller) RunServer(ctx context.Context, bindAddr string, provider IntentProvider) (Result, error) {
	transportCh := make(chan domain.Transport, 1)
	s := server.NewServer(bindAddr, server.Route(transportCh))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			_ = s.Close()
		}
	}()
	slog.InfoContext(ctx, "waiting for peer", "addr", bindAddr)

	var transport domain.Transport
	select {
	case <-ctx.Done():
		return Result{Reason: ReasonQuit}, nil
	case err := <-serveErrCh:
		return Result{Reason: ReasonUnknown}, err
	case transport = <-transportCh:
	}

	link := domain.NewPeerLink(transport)
	if err := link.HandshakeHost(ctx); err != nil {
		return Result{Reason: handshakeReason(err)}, err
	}
	return c.runNetwork(ctx, link, provider)
}

// RunClient は参加役としてマッチを実行します。remoteAddrのホストへ
// 接続し、ハンドシェイク後に同期対戦へ移行します。
func (c *Controller) RunClient(ctx context.Context, remoteAddr string, provider IntentProvider) (Result, error) {
	transport, err := adapterwebsocket.Dial(ctx, remoteAddr)
	if err != nil {
		return Result{Reason: ReasonPeerDisconnected}, err
	}

	link := domain.NewPeerLink(transport)
	if err := link.HandshakeJoin(ctx); err != nil {
		return Result{Reason: handshakeReason(err)}, err
	}
	return c.runNetwork(ctx, link, provider)
}

func handshakeReason(err error) Reason {
	if errors.Is(err, domain.ErrProtocolMismatch) {
		return ReasonVersionMismatch
	}
	return ReasonPeerDisconnected
}

// runNetwork は同期確立済みのリンク上で1マッチを駆動します。
// tickごとにローカル入力をループと相手の両方へ渡し、相手入力を
// ループへ転送します。ループ終了かリンク切断の早い方で終了します。
func (c *Controller) runNetwork(ctx context.Context, link *domain.PeerLink, provider IntentProvider) (Result, error) {
	loop := game.NewLoop(c.cfg)
	snaps := loop.Subscribe()
	local := link.LocalActor()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(runCtx)

	// シミュレーションループ。終了時に相手へ離脱を通知してリンクを
	// 閉じ、入力ポンプを解放する
	eg.Go(func() error {
		defer cancel()
		err := loop.Run(egCtx)
		link.SendQuit(loop.Snapshot().Tick)
		link.Close()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// リンクの送受信ループ
	eg.Go(func() error {
		_ = link.Run(egCtx)
		return nil
	})

	// リンク切断の監視。切断はマッチ終了の決定要因になる
	eg.Go(func() error {
		select {
		case <-egCtx.Done():
		case <-link.Done():
			loop.Stop()
		}
		return nil
	})

	// ローカル入力: ループへ投入しつつ相手へ送信する
	eg.Go(func() error {
		for {
			select {
			case <-egCtx.Done():
				return nil
			case snap := <-snaps:
				in := provider.Intent(snap, snap.Tick+1)
				in.Actor = local
				loop.Submit(in)
				if err := link.SendIntent(in); err != nil {
					if errors.Is(err, domain.ErrBackpressure) {
						slog.WarnContext(egCtx, "intent send backpressure, dropping", "tick", in.Tick)
						continue
					}
					return nil // リンク終了。監視ゴルーチンが停止を駆動する
				}
			}
		}
	})

	// 相手入力: 単一スロットから取り出してループへ転送する
	eg.Go(func() error {
		for {
			select {
			case <-egCtx.Done():
				return nil
			case <-link.RemoteNotify():
				if in, ok := link.LatestRemote(); ok {
					loop.Submit(in)
				}
			}
		}
	})

	if err := eg.Wait(); err != nil {
		return Result{Reason: ReasonUnknown, Final: loop.Snapshot()}, err
	}

	final := loop.Snapshot()
	linkErr := link.Err()
	switch {
	case final.Over():
		return Result{Reason: ReasonPlaneDown, Final: final}, nil
	case errors.Is(linkErr, domain.ErrLinkClosedByPeer):
		return Result{Reason: ReasonPeerDisconnected, Final: final}, linkErr
	case errors.Is(linkErr, domain.ErrLinkFailure):
		return Result{Reason: ReasonPeerDisconnected, Final: final}, linkErr
	default:
		return Result{Reason: ReasonQuit, Final: final}, nil
	}
}
