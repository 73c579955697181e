package network

import (
	"encoding/json"
	"errors"
)

var ErrMissingType = errors.New("envelope has no type field")

// Envelope is the wire unit in both directions: a JSON object with a required
// "type" field. Raw retains the full frame so handlers can decode the payload
// into their own types.
type Envelope struct {
	Type string
	Raw  json.RawMessage
}

// ParseEnvelope extracts the type tag from a raw frame. A frame that is not a
// JSON object or lacks a type is a protocol error; the caller logs and drops
// it without closing the connection.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	if head.Type == "" {
		return nil, ErrMissingType
	}
	return &Envelope{Type: head.Type, Raw: json.RawMessage(raw)}, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

// EncodeFrame flattens payload into a JSON object and splices in the type
// tag, producing the {"type": ..., ...payload} shape both sides speak.
func EncodeFrame(msgType string, payload any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
	}
	tb, err := json.Marshal(msgType)
	if err != nil {
		return nil, err
	}
	fields["type"] = tb
	return json.Marshal(fields)
}
