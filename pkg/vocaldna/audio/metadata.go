package audio

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// Metadata is what ffprobe knows about a recording.
type Metadata struct {
	Filename    string
	Title       string
	Artist      string
	Album       string
	Genre       string
	Language    string
	DurationSec float64
	SampleRate  int
	Channels    int
	Format      string
}

type ffprobeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Format   string            `json:"format_name"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Probe runs ffprobe on path. Without a deadline on ctx it gets five seconds.
func Probe(ctx context.Context, path string) (*Metadata, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(
		ctx,
		"ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return parseProbe(out, path)
}

func parseProbe(out []byte, path string) (*Metadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, err
	}

	meta := &Metadata{Filename: filepath.Base(path), Format: probe.Format.Format}
	found := false
	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			meta.SampleRate, _ = strconv.Atoi(s.SampleRate)
			meta.Channels = s.Channels
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("no audio stream found")
	}
	meta.DurationSec, _ = strconv.ParseFloat(probe.Format.Duration, 64)

	// ffprobe tag keys vary in case between containers
	for k, v := range probe.Format.Tags {
		switch strings.ToLower(k) {
		case "title":
			meta.Title = v
		case "artist":
			meta.Artist = v
		case "album":
			meta.Album = v
		case "genre":
			meta.Genre = v
		case "language":
			meta.Language = v
		}
	}
	return meta, nil
}

// Fill copies probed tags into empty label metadata fields.
func (m *Metadata) Fill(lm *models.LabelMetadata) {
	if m == nil {
		return
	}
	if lm.Title == "" {
		lm.Title = m.Title
		if lm.Title == "" {
			lm.Title = strings.TrimSuffix(m.Filename, filepath.Ext(m.Filename))
		}
	}
	if lm.Artist == "" {
		lm.Artist = m.Artist
	}
	if lm.SongName == "" {
		lm.SongName = m.Title
	}
	if lm.Genre == "" {
		lm.Genre = m.Genre
	}
	if lm.Language == "" {
		lm.Language = m.Language
	}
}
