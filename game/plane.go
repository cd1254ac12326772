package game

import "dogfight/domain"

// Plane はフィールド上の戦闘機を表す構造体です。
// 速度は保持せず、毎tick方位角と固定速力から導出します。
type Plane struct {
	ID      domain.ActorID
	Pos     Vec2
	Heading float64 // [0, 2π) に正規化された方位角（ラジアン）
	Alive   bool
	// Cooldown は次の砲弾を発射できるまでの残りtick数です。
	Cooldown uint8
	// NextRound は次に発射する砲弾のオーナー内連番です。
	NextRound uint16
}

// Velocity は現在の方位角と速力から速度ベクトルを導出します。
func (p Plane) Velocity(speed float64) Vec2 {
	return headingVec(p.Heading).Scale(speed)
}

// Nose は機首の座標を返します。砲弾はここから発射されます。
func (p Plane) Nose(offset float64) Vec2 {
	return p.Pos.Add(headingVec(p.Heading).Scale(offset))
}
