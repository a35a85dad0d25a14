package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/utils"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/events"
)

func handleAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	title := fs.String("title", "", "Recording title")
	artist := fs.String("artist", "", "Artist name")
	song := fs.String("song", "", "Song name")
	category := fs.String("category", "", "Category, e.g. warm-up or repertoire")
	genre := fs.String("genre", "", "Genre")
	language := fs.String("language", "en", "Language the song is sung in")
	sourceURL := fs.String("source", "", "Where the recording came from (YouTube links are recognised)")
	notes := fs.String("notes", "", "Free-form notes")
	rating := fs.Int("rating", 0, "User rating 1-5")
	duration := fs.Duration("duration", 0, "Only analyse this much audio (0 = whole file)")
	noSave := fs.Bool("no-save", false, "Analyse without storing a label")
	live := fs.Bool("live", false, "Print per-frame labels while analysing")
	asJSON := fs.Bool("json", false, "Print the session summary as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("❌ Error: audio file path required")
		fmt.Println("Usage: vocaldna analyze <audio_file> [--title t] [--artist a] [--duration 30s]")
		os.Exit(1)
	}
	filePath := fs.Arg(0)

	if _, err := os.Stat(filePath); err != nil {
		fmt.Printf("❌ Error: file not found: %s\n", filePath)
		os.Exit(1)
	}

	var bus *events.Bus
	if *live {
		bus = events.New()
		if err := subscribeLive(bus); err != nil {
			fmt.Printf("⚠️  Live output disabled: %v\n", err)
			logger.Warnf("Live event subscription failed: %v", err)
			bus = nil
		}
	}

	svc := mustService(bus)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🎤 Analysing: %s\n", filepath.Base(filePath))
	start := time.Now()

	if *noSave {
		summary, err := svc.AnalyzeFile(ctx, filePath, *duration)
		if err != nil && summary == nil {
			fmt.Printf("❌ Analysis failed: %v\n", err)
			os.Exit(1)
		}
		if err != nil {
			fmt.Printf("⚠️  Analysis stopped early: %v\n", err)
		}
		printSummaryOrJSON(summary, *asJSON)
		fmt.Printf("\n⏱️  Took %v\n", time.Since(start).Round(time.Millisecond))
		return
	}

	meta := models.LabelMetadata{
		SourceURL:  *sourceURL,
		Title:      *title,
		Artist:     *artist,
		SongName:   *song,
		Category:   *category,
		Genre:      *genre,
		Language:   *language,
		Notes:      *notes,
		UserRating: *rating,
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if utils.IsYouTubeURL(meta.SourceURL) {
		if id, err := utils.ExtractYouTubeID(meta.SourceURL); err == nil {
			meta.YouTubeID = id
		} else {
			logger.Warnf("Could not extract YouTube ID from %s: %v", meta.SourceURL, err)
		}
	}

	result, err := svc.AnalyzeAndLabel(ctx, filePath, meta, *duration)
	if err != nil {
		fmt.Printf("❌ Analysis failed: %v\n", err)
		os.Exit(1)
	}

	printSummaryOrJSON(result.Summary, *asJSON)
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
	if result.Label != nil && result.Label.ID != "" {
		fmt.Printf("\n✅ Saved label %s\n", result.Label.ID)
	}
	fmt.Printf("⏱️  Took %v\n", time.Since(start).Round(time.Millisecond))
}

// subscribeLive prints frame labels, breaths and engine outages as they happen.
func subscribeLive(bus *events.Bus) error {
	err := bus.OnFrame(func(l models.ComprehensiveLabel) {
		f := l.Frame
		if !f.Voiced {
			fmt.Printf("  %6.2fs  ·\n", f.Time)
			return
		}
		fmt.Printf("  %6.2fs  %-4s %7.1f Hz  conf %.2f  %-6s %-8s %s\n",
			f.Time, f.Note.Name, f.Frequency, f.Confidence, f.Register, f.Vowel, f.Technique)
	})
	if err != nil {
		return fmt.Errorf("subscribe to frames: %w", err)
	}
	err = bus.OnBreath(func(ev models.BreathEvent) {
		fmt.Printf("  %6.2fs  💨 breath\n", ev.Time)
	})
	if err != nil {
		return fmt.Errorf("subscribe to breaths: %w", err)
	}
	err = bus.OnEngineUnavailable(func(id models.EngineID, reason string) {
		logger.Debugf("engine %s unavailable: %s", id, reason)
	})
	if err != nil {
		return fmt.Errorf("subscribe to engine outages: %w", err)
	}
	return nil
}

func printSummaryOrJSON(s *models.SessionSummary, asJSON bool) {
	if asJSON {
		printJSON(s)
		return
	}
	printSummary(s)
}

func printSummary(s *models.SessionSummary) {
	if s == nil {
		return
	}
	fmt.Println("\n📊 Session Summary")
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Duration:          %.1fs (%d frames, %d skipped)\n", s.Duration, s.FramesProcessed, s.FramesSkipped)
	if s.Partial {
		fmt.Println("Status:            partial (aborted)")
	}
	if s.DetectedNotes == 0 {
		fmt.Println("No voiced frames detected.")
	} else {
		fmt.Printf("Detected notes:    %d\n", s.DetectedNotes)
		fmt.Printf("Average pitch:     %s (%.1f Hz)\n", s.AveragePitch, s.AverageFrequency)
		fmt.Printf("Range:             %s\n", s.PitchRange)
		fmt.Printf("Main technique:    %s\n", s.MainTechnique)
		fmt.Printf("Dominant register: %s\n", s.DominantRegister)
		fmt.Printf("Confidence:        %.2f\n", s.ConfidenceAvg)
	}
	if s.Vibrato.Detected {
		fmt.Printf("Vibrato:           %.1f Hz, %.0f cents (%d detections)\n", s.Vibrato.AverageRate, s.Vibrato.AverageDepth, s.Vibrato.Detections)
	}
	fmt.Printf("Breaths:           %d (%s)\n", s.Breath.Count, s.Breath.Pattern)
	fmt.Printf("Passaggio:         %d transitions, %d smooth\n", s.Passaggio.Transitions, s.Passaggio.SmoothTransitions)

	fmt.Println("\n🎯 Performance")
	for _, c := range s.Performance.Components() {
		fmt.Printf("  %-20s %5.1f / %.0f\n", c.Name, c.Value, c.Max)
	}
	fmt.Printf("  %-20s %5.1f / 100  grade %s\n", "total", s.Performance.Total, s.Performance.Grade)
	fmt.Printf("  difficulty level     %d\n", s.DifficultyLevel)

	if len(s.Performance.Recommendations) > 0 {
		fmt.Println("\n💡 Recommendations")
		for _, r := range s.Performance.Recommendations {
			fmt.Printf("  • %s\n", r)
		}
	}

	if p := s.Professional; p != nil {
		fmt.Println("\n🩺 Professional Analysis")
		fmt.Printf("  Frames %d, %.1fs - %.1fs\n", p.Frames, p.TimeRange[0], p.TimeRange[1])
		fmt.Printf("  Pedagogy overall %.1f (%s)\n", p.Pedagogy.Overall, p.Pedagogy.GradeTrend)
		fmt.Printf("  Strain %.2f, risk %s\n", p.Health.AverageStrain, p.Health.RiskLevel)
		for _, in := range p.Insights {
			fmt.Printf("  • %s\n", in)
		}
	}

	if len(s.EngineStats) > 0 {
		fmt.Println("\n⚙️  Engines")
		for id, c := range s.EngineStats {
			fmt.Printf("  %-10s calls %d, unavailable %d, absent %d\n", id, c.Calls, c.Unavailable, c.Absent)
		}
	}
}

func printLabelRow(i int, l models.Label) {
	fmt.Printf("%d. %s\n", i+1, l.Metadata.Title)
	fmt.Printf("   Artist: %s\n", l.Metadata.Artist)
	fmt.Printf("   ID: %s\n", l.ID)
	fmt.Printf("   %s, %s, score %.1f (%s)\n", l.AveragePitch, l.MainTechnique, l.TotalScore, l.Grade)
	fmt.Printf("   Created: %s\n", l.CreatedAt.Format(time.RFC3339))
	fmt.Println()
}

func handleRecent(args []string) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of labels to list")
	fs.Parse(args)

	svc := mustService(nil)
	defer svc.Close()

	labels, err := svc.RecentLabels(*limit)
	if err != nil {
		fmt.Printf("❌ Failed to list labels: %v\n", err)
		os.Exit(1)
	}
	if len(labels) == 0 {
		fmt.Println("📭 No labels in database")
		return
	}

	fmt.Printf("\n📚 %d most recent labels:\n", len(labels))
	fmt.Println(strings.Repeat("─", 60))
	for i, l := range labels {
		printLabelRow(i, l)
	}
}

func handleArtist(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ Error: artist name required")
		fmt.Println("Usage: vocaldna artist <name>")
		os.Exit(1)
	}

	svc := mustService(nil)
	defer svc.Close()

	labels, err := svc.LabelsByArtist(strings.Join(args, " "))
	if err != nil {
		fmt.Printf("❌ Failed to search labels: %v\n", err)
		os.Exit(1)
	}
	if len(labels) == 0 {
		fmt.Println("📭 No labels for that artist")
		return
	}
	for i, l := range labels {
		printLabelRow(i, l)
	}
}

func handleShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the stored label as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("❌ Error: label ID required")
		os.Exit(1)
	}

	svc := mustService(nil)
	defer svc.Close()

	label, err := svc.GetLabel(fs.Arg(0))
	if err != nil {
		exitLookup(err)
	}

	if *asJSON {
		printJSON(label)
		return
	}
	fmt.Printf("🏷️  %s - %s\n", label.Metadata.Title, label.Metadata.Artist)
	if label.Metadata.SourceURL != "" {
		fmt.Printf("Source: %s\n", label.Metadata.SourceURL)
	}
	if label.Summary != nil {
		printSummary(label.Summary)
	}
}

func handleDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ Error: label ID required")
		os.Exit(1)
	}

	svc := mustService(nil)
	defer svc.Close()

	if err := svc.DeleteLabel(args[0]); err != nil {
		exitLookup(err)
	}
	fmt.Printf("🗑️  Deleted label %s\n", args[0])
}

func handleExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "Output file (default: stdout)")
	fs.Parse(args)

	svc := mustService(nil)
	defer svc.Close()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Printf("❌ Failed to create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	n, err := svc.ExportLabels(w)
	if err != nil {
		fmt.Printf("❌ Export failed: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		fmt.Printf("✅ Exported %d labels to %s\n", n, *out)
	}
}

func handlePractice(args []string) {
	fs := flag.NewFlagSet("practice", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: default)")
	minutes := fs.Float64("minutes", 0, "Practice duration in minutes")
	accuracy := fs.Float64("accuracy", 0, "Overall accuracy score 0-100")
	pitch := fs.Float64("pitch", 0, "Pitch match score 0-100")
	timing := fs.Float64("timing", 0, "Timing score 0-100")
	expression := fs.Float64("expression", 0, "Expression score 0-100")
	notes := fs.String("notes", "", "Notes")

	if len(args) < 1 {
		fmt.Println("❌ Error: label ID required")
		os.Exit(1)
	}
	labelID := args[0]
	fs.Parse(args[1:])

	svc := mustService(nil)
	defer svc.Close()

	id, err := svc.RecordPractice(&models.LearningSession{
		LabelID:          labelID,
		UserID:           *user,
		PracticeDuration: *minutes,
		AccuracyScore:    *accuracy,
		PitchMatchScore:  *pitch,
		TimingScore:      *timing,
		ExpressionScore:  *expression,
		Notes:            *notes,
	})
	if err != nil {
		exitLookup(err)
	}
	fmt.Printf("✅ Recorded practice session %d for label %s\n", id, labelID)
}

func handleStats(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ Error: label ID required")
		os.Exit(1)
	}

	svc := mustService(nil)
	defer svc.Close()

	st, err := svc.PracticeStats(args[0])
	if err != nil {
		exitLookup(err)
	}
	fmt.Printf("\n📈 Practice stats for %s\n", args[0])
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Sessions:         %d\n", st.TotalSessions)
	fmt.Printf("Avg duration:     %.1f min\n", st.AvgDuration)
	fmt.Printf("Avg accuracy:     %.1f\n", st.AvgAccuracy)
	fmt.Printf("Avg pitch match:  %.1f\n", st.AvgPitchMatch)
	fmt.Printf("Best accuracy:    %.1f\n", st.BestAccuracy)
}

func handleReport(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ Error: report kind required (health, technique or progress)")
		os.Exit(1)
	}
	kind := args[0]

	fs := flag.NewFlagSet("report", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Number of labels to consider (0 = default)")
	artist := fs.String("artist", "", "Restrict the technique report to one artist")
	fs.Parse(args[1:])

	svc := mustService(nil)
	defer svc.Close()

	var (
		report any
		err    error
	)
	switch kind {
	case "health":
		report, err = svc.HealthReport(*limit)
	case "technique":
		report, err = svc.TechniqueReport(*artist, *limit)
	case "progress":
		report, err = svc.LearningProgress(*limit)
	default:
		fmt.Printf("❌ Unknown report: %s\n", kind)
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, vocaldna.ErrNoData) {
			fmt.Println("📭 No analysed labels to report on yet")
			return
		}
		fmt.Printf("❌ Report failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(report)
}

func handleEngines() {
	svc := mustService(nil)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("⚙️  Engines")
	for _, st := range svc.EngineHealth(ctx) {
		where := "local"
		if st.Remote {
			where = "remote"
		}
		mark := "✅"
		if !st.Available {
			mark = "❌"
		}
		fmt.Printf("  %s %-10s %-8s %s", mark, st.ID, st.Kind, where)
		if st.Error != "" {
			fmt.Printf("  (%s)", st.Error)
		}
		fmt.Println()
	}
}

func handleSpectrogram(args []string) {
	fs := flag.NewFlagSet("spectrogram", flag.ExitOnError)
	out := fs.String("out", "", "Output PNG, or output directory with --dir (default: next to the input)")
	dir := fs.String("dir", "", "Render every WAV file under this directory")
	logScale := fs.Bool("log", false, "Logarithmic frequency axis")
	fs.Parse(args)

	cfg := audio.DefaultSpectrogramConfig()
	cfg.Log = *logScale

	if *dir != "" {
		n, err := renderDir(*dir, *out, cfg)
		if err != nil {
			fmt.Printf("❌ Batch rendering failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Rendered %d spectrograms\n", n)
		return
	}

	if fs.NArg() < 1 {
		fmt.Println("❌ Error: audio file path or --dir required")
		os.Exit(1)
	}
	input := fs.Arg(0)
	output := *out
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}

	if err := renderFile(input, output, cfg); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Spectrogram written to %s\n", output)
}

// renderFile converts input to mono WAV when needed and writes its spectrogram.
func renderFile(input, output string, cfg audio.SpectrogramConfig) error {
	wavPath := input
	if !utils.IsWAV(input) {
		converted, err := audio.ConvertToMonoWAV(context.Background(), input, tempDir, audio.ConvertWAVConfig{SampleRate: sampleRate})
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		defer utils.DeleteFile(converted)
		wavPath = converted
	}

	samples, rate, err := audio.ReadWAV(wavPath)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	if err := audio.RenderSpectrogram(samples, rate, output, cfg); err != nil {
		return fmt.Errorf("failed to render spectrogram: %w", err)
	}
	return nil
}

// renderDir walks inputDir and renders every WAV file into outputDir (or next
// to the file). Files that fail are reported and skipped.
func renderDir(inputDir, outputDir string, cfg audio.SpectrogramConfig) (int, error) {
	if outputDir != "" {
		if err := utils.MakeDir(outputDir); err != nil {
			return 0, err
		}
	}

	count := 0
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !utils.IsWAV(path) {
			return nil
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
		output := filepath.Join(filepath.Dir(path), base)
		if outputDir != "" {
			output = filepath.Join(outputDir, base)
		}

		fmt.Printf("Processing %s...\n", path)
		if err := renderFile(path, output, cfg); err != nil {
			fmt.Printf("⚠️  %s: %v\n", path, err)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

func exitLookup(err error) {
	if errors.Is(err, vocaldna.ErrNotFound) {
		fmt.Println("❌ Label not found")
	} else {
		fmt.Printf("❌ Error: %v\n", err)
	}
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("❌ Failed to encode JSON: %v\n", err)
	}
}
