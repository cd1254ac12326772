package domain

// Intent は1アクターの1tick分の離散入力です。
// 適用されたtickを超えて保持されることはありません。
type Intent struct {
	Actor ActorID
	Tick  uint32
	Pitch int8 // -1: ピッチダウン, 0: 維持, +1: ピッチアップ
	Fire  bool
}

// DefaultIntent は「維持・非発射」のデフォルト入力を返します。
// 入力が期限までに届かなかったtickで代用されます。
func DefaultIntent(actor ActorID, tick uint32) Intent {
	return Intent{Actor: actor, Tick: tick}
}

// ValidPitch はピッチ入力が{-1,0,+1}の範囲内であるかを返します。
func ValidPitch(p int8) bool {
	return p >= -1 && p <= 1
}
