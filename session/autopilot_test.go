package session

import (
	"math"
	"testing"

	"dogfight/domain"
	"dogfight/game"
)

func fixedAutopilot() *Autopilot {
	return &Autopilot{
		Actor:     domain.PlayerOne,
		FireRange: 20,
		AimCone:   math.Pi / 8,
		DeadZone:  math.Pi / 16,
	}
}

func duel(self, enemy game.Plane) game.World {
	self.ID = domain.PlayerOne
	self.Alive = true
	enemy.ID = domain.PlayerTwo
	enemy.Alive = true
	return game.World{Planes: [2]game.Plane{self, enemy}}
}

func TestAutopilot_TurnsTowardEnemy(t *testing.T) {
	a := fixedAutopilot()

	// 敵機が真上: 左旋回（ピッチ+1）
	w := duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 10, Y: 30}},
	)
	if in := a.Intent(w, 1); in.Pitch != 1 {
		t.Errorf("enemy above: pitch = %d, want 1", in.Pitch)
	}

	// 敵機が真下: 右旋回（ピッチ-1）
	w = duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 30}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}},
	)
	if in := a.Intent(w, 1); in.Pitch != -1 {
		t.Errorf("enemy below: pitch = %d, want -1", in.Pitch)
	}

	// 照準が合っている: 旋回しない
	w = duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 30, Y: 10}},
	)
	if in := a.Intent(w, 1); in.Pitch != 0 {
		t.Errorf("enemy ahead: pitch = %d, want 0", in.Pitch)
	}
}

func TestAutopilot_FiresOnlyAimedAndInRange(t *testing.T) {
	a := fixedAutopilot()

	// 正面・射程内: 発射する
	w := duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 20, Y: 10}},
	)
	if in := a.Intent(w, 1); !in.Fire {
		t.Error("aimed and in range: must fire")
	}

	// 正面だが射程外: 発射しない
	w = duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 100, Y: 10}},
	)
	if in := a.Intent(w, 1); in.Fire {
		t.Error("out of range: must not fire")
	}

	// 射程内だが背後: 発射しない
	w = duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}, Heading: 0},
		game.Plane{Pos: game.Vec2{X: 5, Y: 10}},
	)
	if in := a.Intent(w, 1); in.Fire {
		t.Error("enemy behind: must not fire")
	}
}

func TestAutopilot_DefaultAfterShootdown(t *testing.T) {
	a := fixedAutopilot()
	w := duel(
		game.Plane{Pos: game.Vec2{X: 10, Y: 10}},
		game.Plane{Pos: game.Vec2{X: 20, Y: 10}},
	)
	w.Planes[1].Alive = false

	in := a.Intent(w, 7)
	if in.Pitch != 0 || in.Fire {
		t.Errorf("intent after enemy down = %+v, want default", in)
	}
	if in.Actor != domain.PlayerOne || in.Tick != 7 {
		t.Errorf("intent identity = %+v", in)
	}
}

func TestNewAutopilot_PersonalityBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := NewAutopilot(domain.PlayerTwo)
		if a.FireRange < 15 || a.FireRange > 25 {
			t.Fatalf("FireRange = %f, want [15, 25]", a.FireRange)
		}
	}
}
