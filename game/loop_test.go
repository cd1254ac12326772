package game

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"dogfight/domain"
)

func TestIntentSlot_TakeConsumesMatchingTick(t *testing.T) {
	var s intentSlot
	in := domain.Intent{Actor: domain.PlayerOne, Tick: 5, Pitch: 1}
	s.put(in)

	got, ok := s.take(5)
	if !ok || got != in {
		t.Fatalf("take(5) = %+v, %v", got, ok)
	}
	if _, ok := s.take(5); ok {
		t.Error("second take must find the slot empty")
	}
}

func TestIntentSlot_StaleIsDiscarded(t *testing.T) {
	var s intentSlot
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 5})

	// 過去tick宛の入力は遡及適用せず破棄する
	if _, ok := s.take(6); ok {
		t.Error("stale intent must not be applied to a later tick")
	}
	if _, ok := s.take(5); ok {
		t.Error("stale intent must be discarded, not kept")
	}
}

func TestIntentSlot_FutureIsKept(t *testing.T) {
	var s intentSlot
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 9})

	if _, ok := s.take(8); ok {
		t.Error("future intent must not be applied early")
	}
	if _, ok := s.take(9); !ok {
		t.Error("future intent must remain available for its tick")
	}
}

func TestIntentSlot_LatestWins(t *testing.T) {
	var s intentSlot
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 5, Pitch: 1})
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 7, Pitch: -1})

	got, ok := s.take(7)
	if !ok || got.Pitch != -1 {
		t.Errorf("take(7) = %+v, %v, want the newer intent", got, ok)
	}

	// 古いtickの入力は保持中の入力を上書きしない
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 7})
	s.put(domain.Intent{Actor: domain.PlayerOne, Tick: 5})
	if _, ok := s.take(7); !ok {
		t.Error("older intent must not overwrite a newer one")
	}
}

func recvSnapshot(t *testing.T, ch <-chan World) World {
	t.Helper()
	select {
	case w := <-ch:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a snapshot")
		return World{}
	}
}

func TestLoop_RunPublishesAndStops(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 200
	loop := NewLoop(cfg)
	snaps := loop.Subscribe()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()

	first := recvSnapshot(t, snaps)
	if first.Tick != 0 {
		t.Errorf("first snapshot tick = %d, want 0", first.Tick)
	}

	var last World
	for i := 0; i < 5; i++ {
		last = recvSnapshot(t, snaps)
	}
	if last.Tick == 0 {
		t.Error("loop did not advance")
	}

	loop.Stop()
	loop.Stop() // 冪等

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if loop.State() != LoopEnded {
		t.Errorf("state = %d, want LoopEnded", loop.State())
	}
	// 最後のスナップショットは停止後も取得できる
	if loop.Snapshot().Tick == 0 {
		t.Error("final snapshot was not retained")
	}
}

// 入力が一度も届かなくてもマッチは継続し、機体はデフォルト入力
// （直進・非発射）で進行します。
func TestLoop_MissingIntentAppliesDefault(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 200
	loop := NewLoop(cfg)
	snaps := loop.Subscribe()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()

	var snap World
	for snap.Tick < 5 {
		snap = recvSnapshot(t, snaps)
	}
	loop.Stop()
	<-errCh

	if snap.Over() {
		t.Fatal("match ended without any hit")
	}
	if got := snap.Plane(domain.PlayerOne).Heading; got != 0 {
		t.Errorf("P1 heading = %f, want 0 (straight flight)", got)
	}
	if got := snap.Plane(domain.PlayerTwo).Heading; got != math.Pi {
		t.Errorf("P2 heading = %f, want π (straight flight)", got)
	}
	if len(snap.Rounds) != 0 {
		t.Errorf("default intent must not fire, rounds = %d", len(snap.Rounds))
	}
}

func TestLoop_CtxCancelStopsRun(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 200
	loop := NewLoop(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoop_RunAfterEndedIsNoOp(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 200
	loop := NewLoop(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	loop.Stop()
	<-errCh

	if err := loop.Run(context.Background()); err != nil {
		t.Errorf("second Run returned %v, want nil", err)
	}
	if loop.State() != LoopEnded {
		t.Errorf("state = %d, want LoopEnded", loop.State())
	}
}

// tickレート0の設定でもゼロ除算でパニックせず、既定レートで動きます。
func TestLoop_ZeroTickRateFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 0
	loop := NewLoop(cfg)
	snaps := loop.Subscribe()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()

	var snap World
	for snap.Tick < 1 {
		snap = recvSnapshot(t, snaps)
	}
	loop.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestLoop_SubmitIgnoresInvalidActor(t *testing.T) {
	loop := NewLoop(testConfig())
	// パニックしないことのみ確認
	loop.Submit(domain.Intent{Actor: 0, Tick: 1})
	loop.Submit(domain.Intent{Actor: 9, Tick: 1})
}
