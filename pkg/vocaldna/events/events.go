// Package events publishes session progress on an in-process event bus.
// A nil *Bus is valid and drops everything.
package events

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

const (
	TopicFrameAnalyzed     = "frame:analyzed"
	TopicBreathDetected    = "breath:detected"
	TopicEngineUnavailable = "engine:unavailable"
	TopicSessionFinished   = "session:finished"
)

type Bus struct {
	bus evbus.Bus
}

func New() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) PublishFrame(label models.ComprehensiveLabel) {
	if b == nil {
		return
	}
	b.bus.Publish(TopicFrameAnalyzed, label)
}

func (b *Bus) PublishBreath(ev models.BreathEvent) {
	if b == nil {
		return
	}
	b.bus.Publish(TopicBreathDetected, ev)
}

// PublishEngineUnavailable reports one failed engine call. reason is the error text.
func (b *Bus) PublishEngineUnavailable(id models.EngineID, reason string) {
	if b == nil {
		return
	}
	b.bus.Publish(TopicEngineUnavailable, id, reason)
}

func (b *Bus) PublishSessionFinished(summary *models.SessionSummary) {
	if b == nil {
		return
	}
	b.bus.Publish(TopicSessionFinished, summary)
}

func (b *Bus) OnFrame(fn func(models.ComprehensiveLabel)) error {
	return b.subscribe(TopicFrameAnalyzed, fn)
}

func (b *Bus) OnBreath(fn func(models.BreathEvent)) error {
	return b.subscribe(TopicBreathDetected, fn)
}

func (b *Bus) OnEngineUnavailable(fn func(models.EngineID, string)) error {
	return b.subscribe(TopicEngineUnavailable, fn)
}

func (b *Bus) OnSessionFinished(fn func(*models.SessionSummary)) error {
	return b.subscribe(TopicSessionFinished, fn)
}

func (b *Bus) subscribe(topic string, fn any) error {
	if b == nil {
		return nil
	}
	return b.bus.Subscribe(topic, fn)
}

// Unsubscribe removes a handler previously registered for topic.
func (b *Bus) Unsubscribe(topic string, fn any) error {
	if b == nil {
		return nil
	}
	return b.bus.Unsubscribe(topic, fn)
}
