package transcribe

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
)

func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestNewWhisperEngineValidatesPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	modelPath := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	cfg := config.WhisperConfig{
		BinaryPath: writeFakeBinary(t, dir, "whisper-cli"),
		FFmpegPath: writeFakeBinary(t, dir, "ffmpeg"),
		ModelPath:  modelPath,
		Language:   "ru",
		Timeout:    time.Minute,
	}

	engine, err := NewWhisperEngine(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestNewWhisperEngineResolvesBareNamesViaPath(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	writeFakeBinary(t, dir, "whisper-cli")
	writeFakeBinary(t, dir, "ffmpeg")
	t.Setenv("PATH", dir)

	modelPath := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	// Bare command names, as in the default configuration.
	cfg := config.WhisperConfig{
		BinaryPath: "whisper-cli",
		FFmpegPath: "ffmpeg",
		ModelPath:  modelPath,
		Language:   "ru",
		Timeout:    time.Minute,
	}

	engine, err := NewWhisperEngine(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestNewWhisperEngineMissingBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	modelPath := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	cfg := config.WhisperConfig{
		BinaryPath: filepath.Join(dir, "does-not-exist"),
		FFmpegPath: writeFakeBinary(t, dir, "ffmpeg"),
		ModelPath:  modelPath,
		Language:   "ru",
		Timeout:    time.Minute,
	}

	_, err := NewWhisperEngine(cfg, logger)
	require.Error(t, err)
}

func TestNewWhisperEngineRejectsNonExecutableBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	binaryPath := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(binaryPath, []byte(""), 0o644))
	modelPath := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	cfg := config.WhisperConfig{
		BinaryPath: binaryPath,
		FFmpegPath: writeFakeBinary(t, dir, "ffmpeg"),
		ModelPath:  modelPath,
		Language:   "ru",
		Timeout:    time.Minute,
	}

	_, err := NewWhisperEngine(cfg, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not executable")
}

func TestNewWhisperEngineMissingModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.WhisperConfig{
		BinaryPath: writeFakeBinary(t, dir, "whisper-cli"),
		FFmpegPath: writeFakeBinary(t, dir, "ffmpeg"),
		ModelPath:  filepath.Join(dir, "missing-model.bin"),
		Language:   "ru",
		Timeout:    time.Minute,
	}

	_, err := NewWhisperEngine(cfg, logger)
	require.Error(t, err)
}

func TestTranscribeRequiresAudioPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	modelPath := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	cfg := config.WhisperConfig{
		BinaryPath: writeFakeBinary(t, dir, "whisper-cli"),
		FFmpegPath: writeFakeBinary(t, dir, "ffmpeg"),
		ModelPath:  modelPath,
		Language:   "ru",
		Timeout:    time.Minute,
	}

	engine, err := NewWhisperEngine(cfg, logger)
	require.NoError(t, err)

	_, err = engine.Transcribe(t.Context(), "   ")
	require.Error(t, err)
}
