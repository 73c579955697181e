package network

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"chat","message":"hi"}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Type != "chat" {
		t.Errorf("Expected type chat, got %q", env.Type)
	}

	var payload ChatPayload
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if payload.Message != "hi" {
		t.Errorf("Expected message hi, got %q", payload.Message)
	}
}

func TestParseEnvelope_MissingType(t *testing.T) {
	if _, err := ParseEnvelope([]byte(`{"message":"hi"}`)); !errors.Is(err, ErrMissingType) {
		t.Errorf("Expected ErrMissingType, got %v", err)
	}
}

func TestParseEnvelope_MalformedJSON(t *testing.T) {
	if _, err := ParseEnvelope([]byte(`{not json`)); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestEncodeFrame_FlattensPayload(t *testing.T) {
	frame, err := EncodeFrame(MsgTypeGameOver, GameOverPayload{Winner: "Player 1"})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("Frame is not valid JSON: %v", err)
	}
	if decoded["type"] != MsgTypeGameOver {
		t.Errorf("Expected type %s, got %v", MsgTypeGameOver, decoded["type"])
	}
	if decoded["winner"] != "Player 1" {
		t.Errorf("Expected winner at the top level, got %v", decoded["winner"])
	}
}

func TestEncodeFrame_NilPayload(t *testing.T) {
	frame, err := EncodeFrame(MsgTypeReady, nil)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("Frame is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded["type"] != MsgTypeReady {
		t.Errorf("Expected a type-only frame, got %v", decoded)
	}
}
