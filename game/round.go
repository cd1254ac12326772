package game

import "dogfight/domain"

// CannonRound はフィールド上の砲弾を表す構造体です。
// Owner + ID の組がマッチ内で一意になります。
type CannonRound struct {
	ID    uint16
	Owner domain.ActorID
	Pos   Vec2
	Vel   Vec2
	TTL   int16 // 残り生存tick数。0以下で除去
}
