package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/events"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Global flags
var (
	dbPath         string
	tempDir        string
	sampleRate     int
	thresholdsPath string
	crepeURL       string
	spiceURL       string
	formantURL     string
	localEngines   bool
	voiceType      string
	engineTimeout  time.Duration
	logLevel       string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("VOCAL_DB_PATH", "vocaldna.sqlite3"), "Path to the SQLite label database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("VOCAL_TEMP_DIR", os.TempDir()), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", audio.DefaultSampleRate, "Sample rate audio is converted to")
	flag.StringVar(&thresholdsPath, "thresholds", getEnvOrDefault("VOCAL_THRESHOLDS", ""), "YAML file overriding the analysis thresholds")
	flag.StringVar(&crepeURL, "crepe", getEnvOrDefault("VOCAL_CREPE_URL", ""), "Base URL of the CREPE pitch service")
	flag.StringVar(&spiceURL, "spice", getEnvOrDefault("VOCAL_SPICE_URL", ""), "Base URL of the SPICE pitch service")
	flag.StringVar(&formantURL, "formant", getEnvOrDefault("VOCAL_FORMANT_URL", ""), "Base URL of the formant service")
	flag.BoolVar(&localEngines, "local", false, "Also run the in-process pitch and formant engines")
	flag.StringVar(&voiceType, "voice", "", "Voice type for passaggio detection (soprano, mezzo, alto, tenor, baritone, bass)")
	flag.DurationVar(&engineTimeout, "engine-timeout", 0, "Per-frame engine timeout (default from thresholds)")
	flag.StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "INFO"), "Log level")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a VocalDNA service with the configured options. bus
// may be nil.
func createService(bus *events.Bus) (vocaldna.Service, error) {
	th, err := thresholds.Load(thresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	return vocaldna.NewService(
		vocaldna.WithDBPath(dbPath),
		vocaldna.WithTempDir(tempDir),
		vocaldna.WithSampleRate(sampleRate),
		vocaldna.WithThresholds(th),
		vocaldna.WithEngineURLs(vocaldna.EngineURLs{CREPE: crepeURL, SPICE: spiceURL, Formant: formantURL}),
		vocaldna.WithLocalEngines(localEngines),
		vocaldna.WithEngineTimeout(engineTimeout),
		vocaldna.WithVoiceType(models.VoiceType(strings.ToLower(voiceType))),
		vocaldna.WithEventBus(bus),
	)
}

// mustService is createService for commands that cannot continue without one.
func mustService(bus *events.Bus) vocaldna.Service {
	svc, err := createService(bus)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		logger.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	return svc
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if lvl, err := logger.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	log := logger.GetLogger()

	printBanner()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command, args := flag.Arg(0), flag.Args()[1:]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze(args)
	case "recent":
		handleRecent(args)
	case "artist":
		handleArtist(args)
	case "show":
		handleShow(args)
	case "delete":
		handleDelete(args)
	case "export":
		handleExport(args)
	case "practice":
		handlePractice(args)
	case "stats":
		handleStats(args)
	case "report":
		handleReport(args)
	case "engines":
		handleEngines()
	case "spectrogram":
		handleSpectrogram(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
__     __              _ ____  _   _    _
\ \   / /__   ___ __ _| |  _ \| \ | |  / \
 \ \ / / _ \ / __/ _' | | | | |  \| | / _ \
  \ V / (_) | (_| (_| | | |_| | |\  |/ ___ \
   \_/ \___/ \___\__,_|_|____/|_| \_/_/   \_\

         Vocal Technique Analysis CLI
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("VocalDNA - Vocal Technique Analysis CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>              SQLite label database (env: VOCAL_DB_PATH, default: vocaldna.sqlite3)")
	fmt.Println("  --temp <dir>             Temporary directory for audio conversion (env: VOCAL_TEMP_DIR)")
	fmt.Println("  --rate <hz>              Conversion sample rate (default: 16000)")
	fmt.Println("  --thresholds <file>      YAML thresholds override (env: VOCAL_THRESHOLDS)")
	fmt.Println("  --crepe/--spice <url>    Remote pitch services (env: VOCAL_CREPE_URL, VOCAL_SPICE_URL)")
	fmt.Println("  --formant <url>          Remote formant service (env: VOCAL_FORMANT_URL)")
	fmt.Println("  --local                  Add the in-process engines to the remote ones")
	fmt.Println("  --voice <type>           Voice type for passaggio detection")
	fmt.Println("  --engine-timeout <dur>   Per-frame engine timeout")
	fmt.Println("  --log-level <level>      DEBUG, INFO, WARN or ERROR (env: LOG_LEVEL)")
	fmt.Println("\nUsage:")
	fmt.Println("  vocaldna [global-options] analyze <audio_file> [--title t] [--artist a] [--duration 30s] [--no-save] [--live]")
	fmt.Println("  vocaldna [global-options] recent [--limit n]")
	fmt.Println("  vocaldna [global-options] artist <name>")
	fmt.Println("  vocaldna [global-options] show <label_id> [--json]")
	fmt.Println("  vocaldna [global-options] delete <label_id>")
	fmt.Println("  vocaldna [global-options] export [--out file]")
	fmt.Println("  vocaldna [global-options] practice <label_id> --accuracy n [--pitch n] [--timing n] [--expression n] [--minutes n]")
	fmt.Println("  vocaldna [global-options] stats <label_id>")
	fmt.Println("  vocaldna [global-options] report <health|technique|progress> [--limit n] [--artist a]")
	fmt.Println("  vocaldna [global-options] engines")
	fmt.Println("  vocaldna [global-options] spectrogram <audio_file> [--out file.png] [--log]")
	fmt.Println("  vocaldna [global-options] spectrogram --dir <wav_dir> [--out png_dir]")
	fmt.Println("\nExamples:")
	fmt.Println("  # Analyse with the local engines only")
	fmt.Println("  vocaldna analyze take.wav --title \"Warm-up\" --artist \"Me\" --live")
	fmt.Println()
	fmt.Println("  # Analyse with remote CREPE and formant services")
	fmt.Println("  vocaldna --crepe http://localhost:5002 --formant http://localhost:5004 analyze song.mp3 --duration 45s")
}
