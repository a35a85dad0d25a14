//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	allowedOrigins string
	thresholdsPath string
	crepeURL       string
	spiceURL       string
	formantURL     string
	localEngines   bool
	engineTimeout  time.Duration
	maxDuration    time.Duration
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("VOCAL_DB_PATH", "vocaldna.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("VOCAL_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", audio.DefaultSampleRate, "Audio sample rate")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.StringVar(&thresholdsPath, "thresholds", getEnvOrDefault("VOCAL_THRESHOLDS", ""), "YAML thresholds override")
	flag.StringVar(&crepeURL, "crepe", getEnvOrDefault("VOCAL_CREPE_URL", ""), "Base URL of the CREPE pitch service")
	flag.StringVar(&spiceURL, "spice", getEnvOrDefault("VOCAL_SPICE_URL", ""), "Base URL of the SPICE pitch service")
	flag.StringVar(&formantURL, "formant", getEnvOrDefault("VOCAL_FORMANT_URL", ""), "Base URL of the formant service")
	flag.BoolVar(&localEngines, "local", false, "Also run the in-process engines")
	flag.DurationVar(&engineTimeout, "engine-timeout", 0, "Per-frame engine timeout (default from thresholds)")
	flag.DurationVar(&maxDuration, "max-duration", 5*time.Minute, "Longest stretch of an upload that is analysed")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger().WithPrefix("[server]")

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	th, err := thresholds.Load(thresholdsPath)
	if err != nil {
		log.Fatalf("Failed to load thresholds: %v", err)
	}

	service, err := vocaldna.NewService(
		vocaldna.WithDBPath(dbPath),
		vocaldna.WithTempDir(tempDir),
		vocaldna.WithSampleRate(sampleRate),
		vocaldna.WithThresholds(th),
		vocaldna.WithEngineURLs(vocaldna.EngineURLs{CREPE: crepeURL, SPICE: spiceURL, Formant: formantURL}),
		vocaldna.WithLocalEngines(localEngines),
		vocaldna.WithEngineTimeout(engineTimeout),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: origins,
		MaxDuration:    maxDuration,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
