package domain

type linkEventKind uint8

const (
	// unknown
	unknownLinkEvent linkEventKind = iota

	// I/O
	evReadError
	evWriteError

	// protocol
	evDecodeStorm // デコード失敗が窓内で閾値を超えた

	// ctrl
	evClose // リンク終了
)

type linkEvent struct {
	kind linkEventKind
	err  error
}
