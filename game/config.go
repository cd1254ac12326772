package game

import "math"

// シミュレーション定数。決定論のためマッチ中は不変です。
// 弾のTTL・発射間隔・命中半径は実測調整値です。
const (
	PlaneSpeed   float64 = 0.3
	TurnRate     float64 = math.Pi / 8
	MuzzleSpeed  float64 = 1.0
	NoseOffset   float64 = 1.0
	RoundTTL     int16   = 120 // 4秒 @30TPS
	FireCooldown uint8   = 30  // 1秒 @30TPS
	HitRadius    float64 = 0.8 // 弾0.3 + 機体0.5
)

// DefaultTickRate は1秒あたりのtick数の既定値です。
const DefaultTickRate int = 30

// Config は1マッチ分のシミュレーション設定です。
type Config struct {
	Arena        Arena
	PlaneSpeed   float64
	TurnRate     float64
	MuzzleSpeed  float64
	NoseOffset   float64
	RoundTTL     int16
	FireCooldown uint8
	HitRadius    float64
	TickRate     int // ticks / 秒
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		Arena:        DefaultArena(),
		PlaneSpeed:   PlaneSpeed,
		TurnRate:     TurnRate,
		MuzzleSpeed:  MuzzleSpeed,
		NoseOffset:   NoseOffset,
		RoundTTL:     RoundTTL,
		FireCooldown: FireCooldown,
		HitRadius:    HitRadius,
		TickRate:     DefaultTickRate,
	}
}
