package session

import (
	"math"
	"math/rand/v2"

	"dogfight/domain"
	"dogfight/game"
)

// Autopilot はルールベースの操縦AIです。敵機へ旋回し、照準が合い
// かつ射程内にいるときのみ発射します。機体ごとに異なる個性パラメータ
// を持ちます。
type Autopilot struct {
	Actor domain.ActorID

	FireRange float64 // 発射を試みる距離
	AimCone   float64 // 発射を許す照準誤差（ラジアン）
	DeadZone  float64 // 旋回をやめる照準誤差（ラジアン）
}

// NewAutopilot はランダムな個性を持つ操縦AIを生成します。
func NewAutopilot(actor domain.ActorID) *Autopilot {
	return &Autopilot{
		Actor:     actor,
		FireRange: 15.0 + rand.Float64()*10.0, // 15〜25
		AimCone:   math.Pi / 8,
		DeadZone:  math.Pi / 16,
	}
}

func (a *Autopilot) Intent(snapshot game.World, tick uint32) domain.Intent {
	in := domain.DefaultIntent(a.Actor, tick)

	self := snapshot.Plane(a.Actor)
	enemy := snapshot.Plane(a.Actor.Opponent())
	if self == nil || enemy == nil || !self.Alive || !enemy.Alive {
		return in
	}

	// 敵機への相対方位。(-π, π]に畳んで旋回方向を決める
	desired := math.Atan2(enemy.Pos.Y-self.Pos.Y, enemy.Pos.X-self.Pos.X)
	diff := math.Mod(desired-self.Heading, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	} else if diff < -math.Pi {
		diff += 2 * math.Pi
	}

	switch {
	case diff > a.DeadZone:
		in.Pitch = 1
	case diff < -a.DeadZone:
		in.Pitch = -1
	}

	dist := self.Pos.Dist(enemy.Pos)
	in.Fire = math.Abs(diff) < a.AimCone && dist < a.FireRange

	return in
}
