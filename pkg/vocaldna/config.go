package vocaldna

import (
	"os"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/events"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// EngineURLs are the base URLs of the remote analysis services. Empty entries
// are not used.
type EngineURLs struct {
	CREPE   string
	SPICE   string
	Formant string
}

type Config struct {
	DBPath        string
	TempDir       string
	SampleRate    int
	FrameDuration time.Duration
	Logger        Logger
	Storage       Storage
	Thresholds    *thresholds.Thresholds
	PitchEngines  []engine.PitchEngine
	FormantEngine engine.FormantEngine
	EngineURLs    EngineURLs
	LocalEngines  bool
	EngineTimeout time.Duration
	VoiceType     models.VoiceType
	Events        *events.Bus
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithFrameDuration(d time.Duration) Option {
	return func(c *Config) {
		c.FrameDuration = d
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithThresholds(th thresholds.Thresholds) Option {
	return func(c *Config) {
		c.Thresholds = &th
	}
}

// WithPitchEngines replaces the engines built from URLs and local defaults.
func WithPitchEngines(engines ...engine.PitchEngine) Option {
	return func(c *Config) {
		c.PitchEngines = engines
	}
}

func WithFormantEngine(e engine.FormantEngine) Option {
	return func(c *Config) {
		c.FormantEngine = e
	}
}

func WithEngineURLs(urls EngineURLs) Option {
	return func(c *Config) {
		c.EngineURLs = urls
	}
}

// WithLocalEngines adds the in-process autocorrelation pitch engine and the
// spectral formant engine next to any remote ones.
func WithLocalEngines(enabled bool) Option {
	return func(c *Config) {
		c.LocalEngines = enabled
	}
}

func WithEngineTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.EngineTimeout = d
	}
}

func WithVoiceType(vt models.VoiceType) Option {
	return func(c *Config) {
		c.VoiceType = vt
	}
}

func WithEventBus(bus *events.Bus) Option {
	return func(c *Config) {
		c.Events = bus
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:        "vocaldna.sqlite3",
		TempDir:       os.TempDir(),
		SampleRate:    audio.DefaultSampleRate,
		FrameDuration: audio.DefaultFrameDuration,
		Logger:        nil,
	}
}
