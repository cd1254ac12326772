package game

import "math"

// Vec2 は2Dベクトルです。シミュレーション座標と速度に使用します。
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dist は2点間のユークリッド距離を返します。
func (v Vec2) Dist(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// headingVec は方位角から単位方向ベクトルを求めます。
func headingVec(heading float64) Vec2 {
	return Vec2{X: math.Cos(heading), Y: math.Sin(heading)}
}

// normalizeHeading は方位角を[0, 2π)に正規化します。
// 宙返りは正当な飛行であるため、角度はクランプせず巻き戻します。
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}
