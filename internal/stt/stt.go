package stt

import (
	"context"
	"io"
)

// Client defines the interface for speech-to-text providers.
type Client interface {
	// Transcribe converts recorded audio into text. The filename hints the
	// container format to the provider (e.g., "utterance.wav").
	// An empty transcript signals that nothing intelligible was captured.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}
