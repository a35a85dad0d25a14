package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/utils"
)

// DefaultSampleRate is the rate recordings are converted to for analysis.
const DefaultSampleRate = 16000

type ConvertWAVConfig struct {
	SampleRate int
}

// ConvertToMonoWAV runs ffmpeg to produce a mono 16-bit WAV of inputPath in outputDir.
// Without a deadline on ctx the conversion gets one minute.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// Open returns a frame source for any audio file. WAV files are read directly;
// anything else is converted into tempDir first. The returned cleanup removes
// the converted copy and closes the source.
func Open(ctx context.Context, path, tempDir string, sampleRate int, frameDuration time.Duration) (*WAVSource, func(), error) {
	wavPath := path
	converted := false
	if !utils.IsWAV(path) {
		p, err := ConvertToMonoWAV(ctx, path, tempDir, ConvertWAVConfig{SampleRate: sampleRate})
		if err != nil {
			return nil, nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
		}
		wavPath, converted = p, true
	}

	src, err := OpenWAV(wavPath, frameDuration)
	if err != nil {
		if converted {
			utils.DeleteFile(wavPath)
		}
		return nil, nil, err
	}

	cleanup := func() {
		src.Close()
		if converted {
			utils.DeleteFile(wavPath)
		}
	}
	return src, cleanup, nil
}
