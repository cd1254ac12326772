package game

// EdgePolicy はアリーナ境界に到達したエンティティの扱いを表します。
type EdgePolicy uint8

const (
	// EdgeWrap は反対側の境界から再出現させます（デフォルト）。
	EdgeWrap EdgePolicy = iota
	// EdgeBounce は速度を反射させて場内に留めます。
	EdgeBounce
	// EdgeLethal は境界到達でエンティティを除去します。
	EdgeLethal
)

// Arena は2D矩形の戦闘領域と境界ポリシーを表します。
// 境界ポリシーは機体と砲弾の両方に一律に適用されます。
type Arena struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Edge       EdgePolicy
}

// DefaultArena は標準の80x20アリーナ（Wrapポリシー）を返します。
func DefaultArena() Arena {
	return Arena{MinX: 0, MinY: 0, MaxX: 80, MaxY: 20, Edge: EdgeWrap}
}

func (a Arena) Width() float64  { return a.MaxX - a.MinX }
func (a Arena) Height() float64 { return a.MaxY - a.MinY }

// Contains は座標がアリーナ内（境界含む）にあるかを返します。
func (a Arena) Contains(p Vec2) bool {
	return p.X >= a.MinX && p.X <= a.MaxX && p.Y >= a.MinY && p.Y <= a.MaxY
}

// Resolve は境界ポリシーを座標と速度に適用します。
// 戻り値のdeadはEdgeLethalで場外に出た場合にtrueになります。
func (a Arena) Resolve(pos, vel Vec2) (Vec2, Vec2, bool) {
	if a.Contains(pos) {
		return pos, vel, false
	}

	switch a.Edge {
	case EdgeWrap:
		return a.wrap(pos), vel, false
	case EdgeBounce:
		return a.bounce(pos, vel)
	case EdgeLethal:
		return pos, vel, true
	default:
		return a.wrap(pos), vel, false
	}
}

func (a Arena) wrap(p Vec2) Vec2 {
	p.X = wrapCoord(p.X, a.MinX, a.MaxX)
	p.Y = wrapCoord(p.Y, a.MinY, a.MaxY)
	return p
}

func (a Arena) bounce(p, v Vec2) (Vec2, Vec2, bool) {
	if p.X < a.MinX {
		p.X = a.MinX + (a.MinX - p.X)
		v.X = -v.X
	} else if p.X > a.MaxX {
		p.X = a.MaxX - (p.X - a.MaxX)
		v.X = -v.X
	}
	if p.Y < a.MinY {
		p.Y = a.MinY + (a.MinY - p.Y)
		v.Y = -v.Y
	} else if p.Y > a.MaxY {
		p.Y = a.MaxY - (p.Y - a.MaxY)
		v.Y = -v.Y
	}
	return p, v, false
}

func wrapCoord(v, min, max float64) float64 {
	extent := max - min
	for v < min {
		v += extent
	}
	for v > max {
		v -= extent
	}
	return v
}
