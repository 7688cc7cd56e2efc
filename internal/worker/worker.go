// Package worker bridges the speech backend to its host over NATS: speak
// requests in, result events out. NATS dispatches subscription callbacks
// sequentially, which gives the backend the serialized, one-request-at-a-time
// execution it requires.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/speech-backends/openjtalk/internal/core"
)

// ErrUnsupportedReplyFormat indicates a sink was handed a format tag it
// cannot describe in a reply event.
var ErrUnsupportedReplyFormat = errors.New("unsupported reply format")

// Subjects groups the NATS subjects the worker serves.
type Subjects struct {
	Speak      string
	ListVoices string
	Event      string
}

// NatsWorker listens for speak and list-voices requests and drives the
// backend. It also acts as the backend's event reporter, publishing
// begin/end marks for the request currently in flight.
type NatsWorker struct {
	natsConnection *nats.Conn
	subjects       Subjects
	backend        core.SpeechBackend
	sink           ResultSink
	log            *logger.Logger

	// ID of the request currently being spoken. Safe without locking
	// because requests are serialized on one subscription.
	currentRequestID string
}

// NewNatsWorker creates a worker and registers itself as the backend's
// event reporter.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subjects Subjects,
	backend core.SpeechBackend,
	sink ResultSink,
	log *logger.Logger,
) (*NatsWorker, error) {
	worker := &NatsWorker{
		natsConnection: natsConnection,
		subjects:       subjects,
		backend:        backend,
		sink:           sink,
		log:            log,
	}

	backend.SetReporter(worker)

	return worker, nil
}

// Run subscribes and blocks until the context is cancelled, then drains the
// subscriptions.
func (w *NatsWorker) Run(ctx context.Context) error {
	speakSub, err := w.natsConnection.Subscribe(w.subjects.Speak, w.handleSpeak)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w",
			w.subjects.Speak, err)
	}

	voicesSub, err := w.natsConnection.Subscribe(
		w.subjects.ListVoices, w.handleListVoices)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w",
			w.subjects.ListVoices, err)
	}

	<-ctx.Done()

	for _, sub := range []*nats.Subscription{speakSub, voicesSub} {
		drainErr := sub.Drain()
		if drainErr != nil {
			return fmt.Errorf("failed to drain subscription: %w", drainErr)
		}
	}

	return nil
}

// EventBegin publishes the begin mark for the in-flight request.
func (w *NatsWorker) EventBegin() {
	w.publishEventMark(EventStateBegin)
}

// EventEnd publishes the end mark for the in-flight request.
func (w *NatsWorker) EventEnd() {
	w.publishEventMark(EventStateEnd)
}

func (w *NatsWorker) publishEventMark(state string) {
	if w.subjects.Event == "" {
		return
	}

	mark := EventMarkEvent{
		RequestID: w.currentRequestID,
		State:     state,
	}

	data, err := json.Marshal(mark)
	if err != nil {
		w.log.Error("failed to marshal event mark: %v", err)

		return
	}

	publishErr := w.natsConnection.Publish(w.subjects.Event, data)
	if publishErr != nil {
		w.log.Error("failed to publish event mark: %v", publishErr)
	}
}

func (w *NatsWorker) handleSpeak(msg *nats.Msg) {
	var event SpeakRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("failed to unmarshal speak request: %v", err)

		return
	}

	w.currentRequestID = event.RequestID
	reply := w.processSpeak(&event)
	w.currentRequestID = ""

	w.respond(msg, reply)
}

// processSpeak runs the backend pipeline for one request and builds the
// reply event. The request runs with a background context; a hung engine
// hangs the request rather than timing out.
func (w *NatsWorker) processSpeak(event *SpeakRequestedEvent) *SpeakCompletedEvent {
	reply := &SpeakCompletedEvent{
		RequestID: event.RequestID,
	}

	speakErr := w.backend.Speak(context.Background(), core.SpeakRequest{
		Text:      event.Text,
		Language:  event.Language,
		Type:      core.VoiceType(event.VoiceType),
		VoiceName: event.VoiceName,
	})
	if speakErr != nil {
		w.log.Error("speak failed for request %s: %v", event.RequestID, speakErr)
		reply.Error = speakErr.Error()

		return reply
	}

	audioKey, track := w.sink.Result()
	reply.AudioKey = audioKey

	if track != nil {
		reply.Format = string(core.FormatLittleEndian)
		reply.Bits = track.Bits
		reply.Channels = track.Channels
		reply.SampleRate = track.SampleRate
		reply.FrameCount = track.FrameCount
	}

	return reply
}

func (w *NatsWorker) handleListVoices(msg *nats.Msg) {
	voices := w.backend.ListVoices()

	infos := make([]VoiceInfo, 0, len(voices))
	for _, v := range voices {
		infos = append(infos, VoiceInfo{
			Name:     v.Name,
			Language: v.Language,
			Type:     string(v.Type),
		})
	}

	w.respond(msg, infos)
}

func (w *NatsWorker) respond(msg *nats.Msg, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.log.Error("failed to marshal reply: %v", err)

		return
	}

	respondErr := msg.Respond(data)
	if respondErr != nil {
		w.log.Error("failed to publish reply: %v", respondErr)
	}
}
