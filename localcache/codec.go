package localcache

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is the persisted shape of a cached value. Timestamp and TTL are in
// milliseconds so entries written by other clients of the same store stay
// readable.
type Entry struct {
	Data      []byte
	Timestamp int64
	TTL       int64
}

// Valid reports whether the entry is still fresh at nowMillis.
func (e Entry) Valid(nowMillis int64) bool {
	return nowMillis-e.Timestamp < e.TTL
}

// Codec encodes values and entries for persistence.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	EncodeEntry(e Entry) ([]byte, error)
	DecodeEntry(b []byte) (Entry, error)
}

// CodecByName resolves a codec from configuration.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown local cache codec %q", name)
	}
}

// JSONCodec writes {"data":...,"timestamp":...,"ttl":...}.
type JSONCodec struct{}

type jsonEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSONCodec) EncodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(jsonEntry{Data: e.Data, Timestamp: e.Timestamp, TTL: e.TTL})
}

func (JSONCodec) DecodeEntry(b []byte) (Entry, error) {
	var je jsonEntry
	if err := json.Unmarshal(b, &je); err != nil {
		return Entry{}, err
	}
	return Entry{Data: je.Data, Timestamp: je.Timestamp, TTL: je.TTL}, nil
}

// MsgpackCodec is a compact binary alternative to JSONCodec.
type MsgpackCodec struct{}

type msgpackEntry struct {
	Data      msgpack.RawMessage `msgpack:"data"`
	Timestamp int64              `msgpack:"timestamp"`
	TTL       int64              `msgpack:"ttl"`
}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (MsgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (MsgpackCodec) EncodeEntry(e Entry) ([]byte, error) {
	return msgpack.Marshal(msgpackEntry{Data: e.Data, Timestamp: e.Timestamp, TTL: e.TTL})
}

func (MsgpackCodec) DecodeEntry(b []byte) (Entry, error) {
	var me msgpackEntry
	if err := msgpack.Unmarshal(b, &me); err != nil {
		return Entry{}, err
	}
	return Entry{Data: me.Data, Timestamp: me.Timestamp, TTL: me.TTL}, nil
}
