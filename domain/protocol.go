package domain

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

// ProtocolVersion は現在のワイヤプロトコルのバージョンです。
// ハンドシェイク時および全メッセージで検査され、不一致は拒否されます。
const ProtocolVersion uint8 = 1

const (
	HeaderSize        = 8
	IntentPayloadSize = 2
	HelloPayloadSize  = 17
)

// Header はメッセージヘッダー (8バイト)
//
//	version  u8  (1)
//	dataType u8  (1)
//	subType  u8  (1)
//	actor    u8  (1)
//	tick     u32 (4)
type Header struct {
	Version  uint8
	DataType DataType
	SubType  uint8
	Actor    ActorID
	Tick     uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeIntent  DataType = 1
	DataTypeControl DataType = 2
)

// ControlSubType はcontrolメッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeHello ControlSubType = 1
	ControlSubTypeQuit  ControlSubType = 2
	ControlSubTypePing  ControlSubType = 3
	ControlSubTypePong  ControlSubType = 4
)

// デコードエラー。いずれもメッセージ単位でfail closedし、部分的に
// 埋まった値を返すことはありません。
var (
	ErrShortMessage          = errors.New("message shorter than fixed layout")
	ErrVersionMismatch       = errors.New("protocol version mismatch")
	ErrUnknownDataType       = errors.New("unknown data type")
	ErrUnknownControlSubType = errors.New("unknown control subtype")
	ErrInvalidIntentPayload  = errors.New("invalid intent payload")
	ErrInvalidHelloPayload   = errors.New("invalid hello payload")
	ErrInvalidActor          = errors.New("invalid actor id")
)

// IsDecodeError はエラーがワイヤメッセージのデコード失敗であるかを
// 返します。デコード失敗は該当メッセージの破棄に留まり、単発では
// リンクを切断しません。
func IsDecodeError(err error) bool {
	for _, target := range []error{
		ErrShortMessage,
		ErrVersionMismatch,
		ErrUnknownDataType,
		ErrUnknownControlSubType,
		ErrInvalidIntentPayload,
		ErrInvalidHelloPayload,
		ErrInvalidActor,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortMessage
	}
	h := &Header{
		Version:  data[0],
		DataType: DataType(data[1]),
		SubType:  data[2],
		Actor:    ActorID(data[3]),
		Tick:     byteOrder.Uint32(data[4:8]),
	}
	if h.Version != ProtocolVersion {
		return nil, ErrVersionMismatch
	}
	return h, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	data[1] = byte(h.DataType)
	data[2] = h.SubType
	data[3] = byte(h.Actor)
	byteOrder.PutUint32(data[4:8], h.Tick)
	return data
}

// IntentPayload は1tick分の操縦入力 (2バイト)
//
//	pitch i8 (1) - {-1, 0, +1}
//	fire  u8 (1) - {0, 1}
type IntentPayload struct {
	Pitch int8
	Fire  bool
}

// ParseIntentPayload はバイト列からIntentPayloadをパースする
func ParseIntentPayload(data []byte) (*IntentPayload, error) {
	if len(data) < IntentPayloadSize {
		return nil, ErrInvalidIntentPayload
	}
	pitch := int8(data[0])
	if !ValidPitch(pitch) {
		return nil, ErrInvalidIntentPayload
	}
	if data[1] > 1 {
		return nil, ErrInvalidIntentPayload
	}
	return &IntentPayload{
		Pitch: pitch,
		Fire:  data[1] == 1,
	}, nil
}

// Encode はIntentPayloadをバイト列にエンコードする
func (p *IntentPayload) Encode() []byte {
	data := make([]byte, IntentPayloadSize)
	data[0] = byte(p.Pitch)
	if p.Fire {
		data[1] = 1
	}
	return data
}

// HelloPayload はハンドシェイクメッセージのペイロード (17バイト)
//
//	assignedActor u8       (1)  - 受信側に割り当てるActorID
//	matchID       [16]byte (16) - マッチID (UUID)
type HelloPayload struct {
	AssignedActor ActorID
	MatchID       uuid.UUID
}

// ParseHelloPayload はバイト列からHelloPayloadをパースする
func ParseHelloPayload(data []byte) (*HelloPayload, error) {
	if len(data) < HelloPayloadSize {
		return nil, ErrInvalidHelloPayload
	}
	actor := ActorID(data[0])
	if !actor.Valid() {
		return nil, ErrInvalidHelloPayload
	}
	var id uuid.UUID
	copy(id[:], data[1:17])
	return &HelloPayload{
		AssignedActor: actor,
		MatchID:       id,
	}, nil
}

// Encode はHelloPayloadをバイト列にエンコードする
func (p *HelloPayload) Encode() []byte {
	data := make([]byte, HelloPayloadSize)
	data[0] = byte(p.AssignedActor)
	copy(data[1:17], p.MatchID[:])
	return data
}

// Message はデコード済みのワイヤメッセージです。
// DataTypeに対応するペイロードのみが非nilになります。
type Message struct {
	Header Header
	Intent *IntentPayload
	Hello  *HelloPayload
}

// DecodeMessage はバイト列を1つのワイヤメッセージとしてデコードします。
// 切り詰められた入力・不正な値・バージョン不一致はすべてエラーとなり、
// 部分的なMessageが返ることはありません。
func DecodeMessage(data []byte) (*Message, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	payload := data[HeaderSize:]

	switch header.DataType {
	case DataTypeIntent:
		if !header.Actor.Valid() {
			return nil, ErrInvalidActor
		}
		intent, err := ParseIntentPayload(payload)
		if err != nil {
			return nil, err
		}
		return &Message{Header: *header, Intent: intent}, nil
	case DataTypeControl:
		switch ControlSubType(header.SubType) {
		case ControlSubTypeHello:
			hello, err := ParseHelloPayload(payload)
			if err != nil {
				return nil, err
			}
			return &Message{Header: *header, Hello: hello}, nil
		case ControlSubTypeQuit, ControlSubTypePing, ControlSubTypePong:
			return &Message{Header: *header}, nil
		default:
			return nil, ErrUnknownControlSubType
		}
	default:
		return nil, ErrUnknownDataType
	}
}

// EncodeIntentMessage は操縦入力メッセージをエンコードする
func EncodeIntentMessage(in Intent) []byte {
	header := Header{
		Version:  ProtocolVersion,
		DataType: DataTypeIntent,
		Actor:    in.Actor,
		Tick:     in.Tick,
	}
	payload := IntentPayload{Pitch: in.Pitch, Fire: in.Fire}

	data := make([]byte, 0, HeaderSize+IntentPayloadSize)
	data = append(data, header.Encode()...)
	data = append(data, payload.Encode()...)
	return data
}

// AsIntent はデコード済みIntentメッセージをドメインのIntentへ変換します。
func (m *Message) AsIntent() Intent {
	return Intent{
		Actor: m.Header.Actor,
		Tick:  m.Header.Tick,
		Pitch: m.Intent.Pitch,
		Fire:  m.Intent.Fire,
	}
}

// EncodeHelloMessage はハンドシェイクメッセージをエンコードする
// 相手側に割り当てるActorIDとマッチIDを通知するために使用
func EncodeHelloMessage(sender, assigned ActorID, matchID uuid.UUID) []byte {
	header := Header{
		Version:  ProtocolVersion,
		DataType: DataTypeControl,
		SubType:  uint8(ControlSubTypeHello),
		Actor:    sender,
	}
	payload := HelloPayload{AssignedActor: assigned, MatchID: matchID}

	data := make([]byte, 0, HeaderSize+HelloPayloadSize)
	data = append(data, header.Encode()...)
	data = append(data, payload.Encode()...)
	return data
}

// EncodeQuitMessage は明示的な離脱メッセージをエンコードする
func EncodeQuitMessage(sender ActorID, tick uint32) []byte {
	return encodeControl(sender, ControlSubTypeQuit, tick)
}

// EncodePingMessage は死活確認のpingをエンコードする
func EncodePingMessage(sender ActorID) []byte {
	return encodeControl(sender, ControlSubTypePing, 0)
}

// EncodePongMessage はpingへの応答をエンコードする
func EncodePongMessage(sender ActorID) []byte {
	return encodeControl(sender, ControlSubTypePong, 0)
}

func encodeControl(sender ActorID, sub ControlSubType, tick uint32) []byte {
	header := Header{
		Version:  ProtocolVersion,
		DataType: DataTypeControl,
		SubType:  uint8(sub),
		Actor:    sender,
		Tick:     tick,
	}
	return header.Encode()
}
