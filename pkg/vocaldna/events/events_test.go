package events

import (
	"testing"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// TestPublishSubscribe tests delivery on every topic
func TestPublishSubscribe(t *testing.T) {
	b := New()

	var frames []int
	var breaths []int
	var engines []models.EngineID
	var finished *models.SessionSummary

	if err := b.OnFrame(func(l models.ComprehensiveLabel) { frames = append(frames, l.Frame.Index) }); err != nil {
		t.Fatalf("OnFrame: %v", err)
	}
	if err := b.OnBreath(func(ev models.BreathEvent) { breaths = append(breaths, ev.Index) }); err != nil {
		t.Fatalf("OnBreath: %v", err)
	}
	if err := b.OnEngineUnavailable(func(id models.EngineID, _ string) { engines = append(engines, id) }); err != nil {
		t.Fatalf("OnEngineUnavailable: %v", err)
	}
	if err := b.OnSessionFinished(func(s *models.SessionSummary) { finished = s }); err != nil {
		t.Fatalf("OnSessionFinished: %v", err)
	}

	b.PublishFrame(models.ComprehensiveLabel{Frame: models.FusedFrame{Index: 3}})
	b.PublishFrame(models.ComprehensiveLabel{Frame: models.FusedFrame{Index: 4}})
	b.PublishBreath(models.BreathEvent{Index: 2, Time: 0.2})
	b.PublishEngineUnavailable(models.EngineSPICE, "timeout")
	b.PublishSessionFinished(&models.SessionSummary{SessionID: "s1"})

	if len(frames) != 2 || frames[1] != 4 {
		t.Errorf("Expected frames [3 4], got %v", frames)
	}
	if len(breaths) != 1 || breaths[0] != 2 {
		t.Errorf("Expected one breath at 2, got %v", breaths)
	}
	if len(engines) != 1 || engines[0] != models.EngineSPICE {
		t.Errorf("Expected spice unavailable, got %v", engines)
	}
	if finished == nil || finished.SessionID != "s1" {
		t.Errorf("Expected finished session s1, got %+v", finished)
	}
}

// TestNilBus tests that a nil bus is a no-op
func TestNilBus(t *testing.T) {
	var b *Bus
	b.PublishFrame(models.ComprehensiveLabel{})
	b.PublishSessionFinished(nil)
	if err := b.OnBreath(func(models.BreathEvent) {}); err != nil {
		t.Errorf("Expected nil error on nil bus, got %v", err)
	}
}
