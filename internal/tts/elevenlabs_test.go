package tts

import (
	"testing"
)

func TestNewElevenLabsClient_DefaultValues(t *testing.T) {
	// Negative values signal "use defaults" since 0.0 is a valid setting
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  -1,
		Similarity: -1,
	})

	if client.voiceID != "EXAVITQu4vr4xnSDxMaL" {
		t.Errorf("voiceID = %q, want %q", client.voiceID, "EXAVITQu4vr4xnSDxMaL")
	}
	if client.modelID != "eleven_multilingual_v2" {
		t.Errorf("modelID = %q, want %q", client.modelID, "eleven_multilingual_v2")
	}
	if client.stability != 0.5 {
		t.Errorf("stability = %f, want %f", client.stability, 0.5)
	}
	if client.similarity != 0.75 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.75)
	}
}

func TestNewElevenLabsClient_CustomSettings(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  0.8,
		Similarity: 0.6,
	})

	if client.stability != 0.8 {
		t.Errorf("stability = %f, want %f", client.stability, 0.8)
	}
	if client.similarity != 0.6 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.6)
	}
}

func TestNewElevenLabsClient_ZeroValuesAreValid(t *testing.T) {
	// 0.0 is a valid ElevenLabs setting (max expressiveness)
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  0,
		Similarity: 0,
	})

	if client.stability != 0 {
		t.Errorf("stability = %f, want %f", client.stability, 0.0)
	}
	if client.similarity != 0 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.0)
	}
}

func TestNewElevenLabsClient_CustomVoiceAndModel(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:  "test-key",
		VoiceID: "custom-voice-id",
		ModelID: "custom-model-id",
	})

	if client.voiceID != "custom-voice-id" {
		t.Errorf("voiceID = %q, want %q", client.voiceID, "custom-voice-id")
	}
	if client.modelID != "custom-model-id" {
		t.Errorf("modelID = %q, want %q", client.modelID, "custom-model-id")
	}
}

func TestClientInterface(t *testing.T) {
	var _ Client = (*ElevenLabsClient)(nil)
}
