package game

import (
	"math"
	"slices"

	"dogfight/domain"
)

// World はあるtick時点の権威的なシミュレーション状態です。
// 書き込みはLoopのみが行い、他のコンポーネントはSnapshotを受け取ります。
type World struct {
	Tick   uint32
	Planes [2]Plane
	Rounds []CannonRound
}

// NewWorld は初期状態のWorldを生成します。
// 両機はアリーナ中央高度の左右1/4地点から、それぞれ自陣側の境界へ
// 向かって飛行を開始します。
func NewWorld(cfg Config) World {
	a := cfg.Arena
	midY := a.MinY + a.Height()/2

	return World{
		Tick: 0,
		Planes: [2]Plane{
			{
				ID:      domain.PlayerOne,
				Pos:     Vec2{X: a.MaxX - a.Width()/4, Y: midY},
				Heading: 0, // +X方向
				Alive:   true,
			},
			{
				ID:      domain.PlayerTwo,
				Pos:     Vec2{X: a.MinX + a.Width()/4, Y: midY},
				Heading: math.Pi, // -X方向
				Alive:   true,
			},
		},
	}
}

// Snapshot はWorldの読み取り専用コピーを返します。
// Roundsスライスも複製するため、受け取り側の保持は安全です。
func (w World) Snapshot() World {
	w.Rounds = slices.Clone(w.Rounds)
	return w
}

// Plane は指定アクターの機体を返します。
func (w *World) Plane(id domain.ActorID) *Plane {
	for i := range w.Planes {
		if w.Planes[i].ID == id {
			return &w.Planes[i]
		}
	}
	return nil
}

// Over はマッチ終了条件（いずれかの機体の撃墜）を満たしたかを返します。
func (w World) Over() bool {
	return !w.Planes[0].Alive || !w.Planes[1].Alive
}

// Winner は勝者のActorIDを返します。決着していない場合と相打ちの
// 場合は0を返します。
func (w World) Winner() domain.ActorID {
	switch {
	case w.Planes[0].Alive && !w.Planes[1].Alive:
		return w.Planes[0].ID
	case !w.Planes[0].Alive && w.Planes[1].Alive:
		return w.Planes[1].ID
	default:
		return 0
	}
}
