package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IdleReason はリンクが無応答と判定された要因のビットマスクです。
type IdleReason uint8

const (
	IdleNone IdleReason = 0
	IdleRead IdleReason = 1 << 0
	IdlePong IdleReason = 1 << 1
)

func (r IdleReason) String() string {
	switch r {
	case IdleRead:
		return "read"
	case IdlePong:
		return "pong"
	case IdleRead | IdlePong:
		return "read|pong"
	default:
		return "none"
	}
}

// Session は1本のピアリンクの論理的な接続状態を表します。
// 受信・pong受信の時刻を追跡し、無応答検出に使用します。
type Session struct {
	ID uuid.UUID

	// activity
	lastRead atomic.Int64
	lastPong atomic.Int64

	// lifecycle
	closed atomic.Bool
}

func NewSession() *Session {
	s := &Session{ID: uuid.New()}
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastPong.Store(now)
	return s
}

func (s *Session) TouchRead() {
	s.lastRead.Store(time.Now().UnixNano())
}

func (s *Session) TouchPong() {
	s.lastPong.Store(time.Now().UnixNano())
}

// Close はセッションを終了状態へ遷移させます。初回の呼び出しのみ
// trueを返します。
func (s *Session) Close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// IsIdle は受信とpongの両方がtimeoutを超えて途絶えているかを返します。
// 相手はping応答を続ける限り、入力が無くてもidleとは判定されません。
func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleNone
	}
	var reason IdleReason
	if isIdleSince(s.lastRead.Load(), timeout) {
		reason |= IdleRead
	}
	if isIdleSince(s.lastPong.Load(), timeout) {
		reason |= IdlePong
	}
	// 受信が生きている間はリンクを維持する
	if reason != IdleRead|IdlePong {
		return false, IdleNone
	}
	return true, reason
}

func isIdleSince(nano int64, timeout time.Duration) bool {
	return time.Since(time.Unix(0, nano)) > timeout
}
