package domain

import "fmt"

// ActorID はマッチ内の戦闘機の固定識別子です。
// マッチは常に2機で行われ、識別子はマッチ開始から終了まで不変です。
type ActorID uint8

const (
	PlayerOne ActorID = 1
	PlayerTwo ActorID = 2
)

// Valid はActorIDが定義済みの値であるかを返します。
func (a ActorID) Valid() bool {
	return a == PlayerOne || a == PlayerTwo
}

// Opponent は対戦相手のActorIDを返します。
func (a ActorID) Opponent() ActorID {
	if a == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (a ActorID) String() string {
	switch a {
	case PlayerOne:
		return "P1"
	case PlayerTwo:
		return "P2"
	default:
		return fmt.Sprintf("ActorID(%d)", uint8(a))
	}
}
