package igrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec carries plain Go structs over gRPC; the FriendGraph messages have
// no generated protobuf types.
type jsonCodec struct{}

const codecName = "json"

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
