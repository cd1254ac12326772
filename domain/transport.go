package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport

// Transport は信頼性のある順序保証つきメッセージ転送路を表します。
// 再送はトランスポート自身の保証に依存し、ワイヤプロトコル側では
// 行いません。生のI/OはPeerLinkのみが実行します。
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}
