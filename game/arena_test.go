package game

import (
	"math"
	"testing"
)

func TestArena_WrapKeepsEntitiesInside(t *testing.T) {
	a := Arena{MinX: 0, MinY: 0, MaxX: 80, MaxY: 20, Edge: EdgeWrap}

	cases := []struct {
		name string
		pos  Vec2
		want Vec2
	}{
		{"right edge", Vec2{X: 80.5, Y: 10}, Vec2{X: 0.5, Y: 10}},
		{"left edge", Vec2{X: -0.5, Y: 10}, Vec2{X: 79.5, Y: 10}},
		{"top edge", Vec2{X: 40, Y: 20.25}, Vec2{X: 40, Y: 0.25}},
		{"bottom edge", Vec2{X: 40, Y: -0.25}, Vec2{X: 40, Y: 19.75}},
	}
	for _, c := range cases {
		pos, vel, dead := a.Resolve(c.pos, Vec2{X: 1, Y: 0})
		if dead {
			t.Errorf("%s: wrap must not kill", c.name)
		}
		if math.Abs(pos.X-c.want.X) > 1e-9 || math.Abs(pos.Y-c.want.Y) > 1e-9 {
			t.Errorf("%s: pos = %+v, want %+v", c.name, pos, c.want)
		}
		if vel != (Vec2{X: 1, Y: 0}) {
			t.Errorf("%s: wrap must not change velocity, got %+v", c.name, vel)
		}
		if !a.Contains(pos) {
			t.Errorf("%s: resolved position %+v is outside the arena", c.name, pos)
		}
	}
}

func TestArena_BounceReflectsVelocity(t *testing.T) {
	a := Arena{MinX: 0, MinY: 0, MaxX: 80, MaxY: 20, Edge: EdgeBounce}

	pos, vel, dead := a.Resolve(Vec2{X: 81, Y: 10}, Vec2{X: 2, Y: 1})
	if dead {
		t.Fatal("bounce must not kill")
	}
	if pos.X != 79 || pos.Y != 10 {
		t.Errorf("pos = %+v, want {79 10}", pos)
	}
	if vel.X != -2 || vel.Y != 1 {
		t.Errorf("vel = %+v, want {-2 1}", vel)
	}
	if !a.Contains(pos) {
		t.Errorf("resolved position %+v is outside the arena", pos)
	}

	// 下端でY成分のみ反転する
	pos, vel, _ = a.Resolve(Vec2{X: 40, Y: -1}, Vec2{X: 1, Y: -2})
	if pos.Y != 1 || vel.Y != 2 || vel.X != 1 {
		t.Errorf("bottom bounce: pos = %+v vel = %+v", pos, vel)
	}
}

func TestArena_LethalRemovesAtBoundary(t *testing.T) {
	a := Arena{MinX: 0, MinY: 0, MaxX: 80, MaxY: 20, Edge: EdgeLethal}

	if _, _, dead := a.Resolve(Vec2{X: 80.1, Y: 10}, Vec2{}); !dead {
		t.Error("out of bounds must be lethal")
	}
	if _, _, dead := a.Resolve(Vec2{X: 40, Y: 10}, Vec2{}); dead {
		t.Error("in bounds must not be lethal")
	}
}

func TestArena_InsideIsUntouched(t *testing.T) {
	for _, edge := range []EdgePolicy{EdgeWrap, EdgeBounce, EdgeLethal} {
		a := Arena{MinX: 0, MinY: 0, MaxX: 80, MaxY: 20, Edge: edge}
		pos, vel, dead := a.Resolve(Vec2{X: 12.5, Y: 7.5}, Vec2{X: 1, Y: -1})
		if dead || pos != (Vec2{X: 12.5, Y: 7.5}) || vel != (Vec2{X: 1, Y: -1}) {
			t.Errorf("edge=%d: inside entity was modified: pos=%+v vel=%+v dead=%v",
				edge, pos, vel, dead)
		}
	}
}
