package game

// ResolveCollisions はStep直後のWorldに境界ポリシーと命中判定を
// 適用します。順序は決定的です: 先に境界を解決するため、境界で
// 除去された砲弾が同tickで命中することはありません。
func ResolveCollisions(w World, cfg Config) World {
	next := w.Snapshot()
	arena := cfg.Arena

	// 機体の境界解決
	for i := range next.Planes {
		p := &next.Planes[i]
		if !p.Alive {
			continue
		}
		pos, _, dead := arena.Resolve(p.Pos, p.Velocity(cfg.PlaneSpeed))
		p.Pos = pos
		if dead {
			p.Alive = false
		}
	}

	// 砲弾の境界解決
	live := next.Rounds[:0]
	for _, r := range next.Rounds {
		pos, vel, dead := arena.Resolve(r.Pos, r.Vel)
		if dead {
			continue
		}
		r.Pos = pos
		r.Vel = vel
		live = append(live, r)
	}
	next.Rounds = live

	// 命中判定。自機の砲弾は自機に当たりません。
	// 同tickに複数の砲弾が同一機体へ命中した場合は全弾消費されます
	// （撃墜は冪等）。
	live = next.Rounds[:0]
	for _, r := range next.Rounds {
		hit := false
		for i := range next.Planes {
			p := &next.Planes[i]
			if p.ID == r.Owner {
				continue
			}
			if r.Pos.Dist(p.Pos) < cfg.HitRadius {
				p.Alive = false
				hit = true
			}
		}
		if !hit {
			live = append(live, r)
		}
	}
	next.Rounds = live

	return next
}
