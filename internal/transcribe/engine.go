// Package transcribe converts Telegram voice notes into text using an
// external whisper.cpp binary. FFmpeg handles the OGG/Opus to WAV decode
// step, because whisper-cli only accepts 16-kHz mono PCM input.
package transcribe

import "context"

// Engine transcribes a single audio file to text.
type Engine interface {
	// Transcribe reads the audio file at path and returns the recognized
	// text, trimmed. An empty result without an error means nothing was
	// heard.
	Transcribe(ctx context.Context, path string) (string, error)
}
