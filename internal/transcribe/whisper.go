package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
)

// whisperEngine shells out to ffmpeg and whisper-cli. Both binaries must
// be present on the host; their paths come from the configuration.
type whisperEngine struct {
	binaryPath string
	modelPath  string
	ffmpegPath string
	language   string
	timeout    time.Duration
	log        *slog.Logger
}

// NewWhisperEngine creates an Engine backed by a local whisper.cpp binary.
// It verifies up front that the binaries and the model file exist so a
// broken deployment fails at startup rather than on the first voice
// message. Bare command names resolve through PATH.
func NewWhisperEngine(cfg config.WhisperConfig, log *slog.Logger) (Engine, error) {
	binaryPath, err := exec.LookPath(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("whisper binary missing or not executable: %w", err)
	}
	ffmpegPath, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg binary missing or not executable: %w", err)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model not found: %w", err)
	}

	logger := log.With("component", "whisper")
	logger.Info("Whisper engine ready", "binary", binaryPath, "model", cfg.ModelPath, "language", cfg.Language)

	return &whisperEngine{
		binaryPath: binaryPath,
		modelPath:  cfg.ModelPath,
		ffmpegPath: ffmpegPath,
		language:   cfg.Language,
		timeout:    cfg.Timeout,
		log:        logger,
	}, nil
}

func (e *whisperEngine) Transcribe(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("audio path is required")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	wavPath, err := e.convertToWAV(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() {
		if removeErr := os.Remove(wavPath); removeErr != nil && !os.IsNotExist(removeErr) {
			e.log.Warn("Failed to remove temporary WAV file", "path", wavPath, "error", removeErr)
		}
	}()

	return e.runWhisper(ctx, wavPath)
}

// convertToWAV decodes any audio file into the 16-kHz mono WAV whisper-cli
// expects. The caller removes the returned file.
func (e *whisperEngine) convertToWAV(ctx context.Context, inputPath string) (string, error) {
	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("mitya-voice-%d.wav", time.Now().UnixNano()))

	args := []string{
		"-y",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		wavPath,
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log.Debug("Running ffmpeg", "args", args)
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if removeErr := os.Remove(wavPath); removeErr != nil && !os.IsNotExist(removeErr) {
			e.log.Warn("Failed to remove partial WAV file", "path", wavPath, "error", removeErr)
		}
		return "", fmt.Errorf("ffmpeg decode failed: %w (%s)", err, errText)
	}

	return wavPath, nil
}

func (e *whisperEngine) runWhisper(ctx context.Context, wavPath string) (string, error) {
	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("mitya-transcript-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"

	args := []string{"-m", e.modelPath, "-f", wavPath, "-nt", "-otxt", "-of", outBase}
	lang := strings.TrimSpace(e.language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, e.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log.Debug("Running whisper engine", "args", args)
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		return "", fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	defer func() {
		if removeErr := os.Remove(txtOut); removeErr != nil && !os.IsNotExist(removeErr) {
			e.log.Warn("Failed to remove transcript file", "path", txtOut, "error", removeErr)
		}
	}()

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}
