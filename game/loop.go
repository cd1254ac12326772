package game

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dogfight/domain"
)

// LoopState はシミュレーションループの状態です。
type LoopState int32

const (
	LoopIdle LoopState = iota
	LoopRunning
	LoopEnded
)

// intentSlot はアクターごとの単一スロット受け渡し口です。
// 最新の入力のみを保持し、古い入力は上書きされます（stale入力の
// 無制限なキューイングを避けるため）。
type intentSlot struct {
	mu     sync.Mutex
	intent domain.Intent
	filled bool
}

func (s *intentSlot) put(in domain.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 保持中の入力より古いtickの入力は受け付けない
	if s.filled && in.Tick < s.intent.Tick {
		return
	}
	s.intent = in
	s.filled = true
}

// take は指定tick宛の入力を取り出します。過去tick宛の入力は破棄し、
// 未来tick宛の入力はスロットに残します。
func (s *intentSlot) take(tick uint32) (domain.Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filled {
		return domain.Intent{}, false
	}
	switch {
	case s.intent.Tick == tick:
		s.filled = false
		return s.intent, true
	case s.intent.Tick < tick:
		// stale: 適用済みtick宛の入力は遡及適用しない
		s.filled = false
		return domain.Intent{}, false
	default:
		return domain.Intent{}, false
	}
}

// Loop は固定tickレートでPhysics StepとCollision Resolverを駆動し、
// 権威的なWorldを保持するシミュレーションループです。
// Worldの書き込みはこのループのみが行い、購読者には読み取り専用の
// スナップショットを配信します。
type Loop struct {
	cfg Config

	state atomic.Int32

	slots [2]intentSlot

	mu    sync.Mutex
	world World
	subs  []chan World

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLoop はIdle状態のループを生成します。Runで初期Worldが構築され
// tick 0のスナップショットが配信されます。
func NewLoop(cfg Config) *Loop {
	return &Loop{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

// State は現在のループ状態を返します。
func (l *Loop) State() LoopState {
	return LoopState(l.state.Load())
}

// Submit は1アクターの入力をループへ渡します。任意のゴルーチンから
// 呼び出せます。同一アクターの入力は最新のものが優先されます。
func (l *Loop) Submit(in domain.Intent) {
	if !in.Actor.Valid() {
		return
	}
	l.slots[in.Actor-domain.PlayerOne].put(in)
}

// Subscribe はスナップショット配信チャネルを返します。Runの開始前に
// 呼び出してください。購読側が追いつかない場合、配信は破棄されます。
func (l *Loop) Subscribe() <-chan World {
	ch := make(chan World, 8)
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()
	return ch
}

// Stop はループを停止します。任意のゴルーチンから安全に呼び出せ、
// 冪等です。最後のスナップショットは保持されます。
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Snapshot は最後に確定したWorldの読み取り専用コピーを返します。
func (l *Loop) Snapshot() World {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.Snapshot()
}

// Run はループを駆動します。いずれかの機体の撃墜、Stop、もしくは
// ctxのキャンセルでEndedに遷移して戻ります。
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(LoopIdle), int32(LoopRunning)) {
		return nil
	}
	defer l.state.Store(int32(LoopEnded))

	l.mu.Lock()
	l.world = NewWorld(l.cfg)
	l.mu.Unlock()
	l.publish(ctx)

	tickRate := l.cfg.TickRate
	if tickRate <= 0 {
		// 0以下のtickレートはゼロ除算になるため既定値へ戻す
		slog.WarnContext(ctx, "invalid tick rate, using default",
			"tickRate", tickRate, "default", DefaultTickRate)
		tickRate = DefaultTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-ticker.C:
			if done := l.tick(ctx); done {
				return nil
			}
		}
	}
}

// tick は1tick分の状態遷移を実行します。戻り値はマッチ終了を表します。
func (l *Loop) tick(ctx context.Context) bool {
	l.mu.Lock()
	current := l.world
	l.mu.Unlock()

	target := current.Tick + 1

	var intents [2]domain.Intent
	for i, actor := range [2]domain.ActorID{domain.PlayerOne, domain.PlayerTwo} {
		if !current.Planes[i].Alive {
			intents[i] = domain.DefaultIntent(actor, target)
			continue
		}
		in, ok := l.slots[i].take(target)
		if !ok {
			// 期限（tick境界）までに入力が届かなかったtickは
			// デフォルト入力で進行する。マッチは継続
			slog.DebugContext(ctx, "intent missing, applying default",
				"actor", actor, "tick", target)
			in = domain.DefaultIntent(actor, target)
		}
		intents[i] = in
	}

	next := Step(current, intents, l.cfg)
	next = ResolveCollisions(next, l.cfg)

	l.mu.Lock()
	l.world = next
	l.mu.Unlock()
	l.publish(ctx)

	if next.Over() {
		slog.InfoContext(ctx, "match decided",
			"tick", next.Tick, "winner", next.Winner())
		return true
	}
	return false
}

func (l *Loop) publish(ctx context.Context) {
	l.mu.Lock()
	snap := l.world.Snapshot()
	subs := l.subs
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			slog.WarnContext(ctx, "snapshot subscriber behind, dropping",
				"tick", snap.Tick)
		}
	}
}
