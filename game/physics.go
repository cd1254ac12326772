package game

import "dogfight/domain"

// Step はWorldを1tick進めます。(World, Intents)の純粋関数であり、
// 同じ入力からは常にビット単位で同一のWorldが得られます。
//
// 処理順は固定です:
//  1. 生存機体のピッチ適用・位置積分
//  2. 砲弾の位置積分とTTL減算（TTL切れは命中判定なしで除去）
//  3. 発射処理（クールダウン0の生存機体のみ）
//  4. クールダウン減算
//
// 境界ポリシーと命中判定はResolveCollisionsが同tick内で行います。
func Step(w World, intents [2]domain.Intent, cfg Config) World {
	next := w.Snapshot()
	next.Tick = w.Tick + 1

	// 機体の操縦と移動
	for i := range next.Planes {
		p := &next.Planes[i]
		if !p.Alive {
			continue // 撃墜済みの機体は一切変化しない
		}
		in := intentFor(intents, p.ID)
		p.Heading = normalizeHeading(p.Heading + float64(in.Pitch)*cfg.TurnRate)
		p.Pos = p.Pos.Add(p.Velocity(cfg.PlaneSpeed))
	}

	// 砲弾の移動とTTL
	live := next.Rounds[:0]
	for _, r := range next.Rounds {
		r.Pos = r.Pos.Add(r.Vel)
		r.TTL--
		if r.TTL <= 0 {
			continue
		}
		live = append(live, r)
	}
	next.Rounds = live

	// 発射
	for i := range next.Planes {
		p := &next.Planes[i]
		if !p.Alive {
			continue
		}
		in := intentFor(intents, p.ID)
		if in.Fire && p.Cooldown == 0 {
			next.Rounds = append(next.Rounds, CannonRound{
				ID:    p.NextRound,
				Owner: p.ID,
				Pos:   p.Nose(cfg.NoseOffset),
				Vel:   headingVec(p.Heading).Scale(cfg.MuzzleSpeed),
				TTL:   cfg.RoundTTL,
			})
			p.NextRound++
			p.Cooldown = cfg.FireCooldown
		}
	}

	// クールダウン減算
	for i := range next.Planes {
		if next.Planes[i].Cooldown > 0 {
			next.Planes[i].Cooldown--
		}
	}

	return next
}

func intentFor(intents [2]domain.Intent, id domain.ActorID) domain.Intent {
	for _, in := range intents {
		if in.Actor == id {
			return in
		}
	}
	return domain.DefaultIntent(id, 0)
}
