package session

import (
	"dogfight/domain"
	"dogfight/game"
)

// IntentProvider は1アクター分の入力源です。キー捕捉や描画は外部
// コラボレーターであり、コアはこの形に正規化された入力のみを扱います。
type IntentProvider interface {
	// Intent は直近のスナップショットを踏まえ、指定tickに適用する
	// 入力を返します。
	Intent(snapshot game.World, tick uint32) domain.Intent
}

// ScriptStep は台本入力の1tick分です。
type ScriptStep struct {
	Pitch int8
	Fire  bool
}

// ScriptProvider はtickごとに固定された台本どおりの入力を返します。
// テストとデモ用です。台本にないtickはデフォルト入力になります。
type ScriptProvider struct {
	Actor  domain.ActorID
	Script map[uint32]ScriptStep
}

func (s *ScriptProvider) Intent(_ game.World, tick uint32) domain.Intent {
	step, ok := s.Script[tick]
	if !ok {
		return domain.DefaultIntent(s.Actor, tick)
	}
	return domain.Intent{Actor: s.Actor, Tick: tick, Pitch: step.Pitch, Fire: step.Fire}
}
