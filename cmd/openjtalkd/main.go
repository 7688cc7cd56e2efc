// main package for the Open JTalk speech backend service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/speech-backends/openjtalk/internal/config"
	"github.com/speech-backends/openjtalk/internal/module"
	"github.com/speech-backends/openjtalk/internal/objectstore"
	"github.com/speech-backends/openjtalk/internal/playback"
	"github.com/speech-backends/openjtalk/internal/synth"
	"github.com/speech-backends/openjtalk/internal/voice"
	"github.com/speech-backends/openjtalk/internal/wav"
	"github.com/speech-backends/openjtalk/internal/worker"
)

const (
	bootstrapLogFile = "openjtalkd-bootstrap.log"
	serviceLogFile   = "openjtalkd.log"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, serviceLogFile)
	if err != nil {
		bootstrapLog.Error("failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	sink, err := buildSink(cfg, natsConnection, log)
	if err != nil {
		return err
	}

	backend := module.New(
		voice.NewRegistry(cfg.RegisteredVoices()),
		voice.NewResolver(cfg.OpenJTalk.VoiceFileSearchPath),
		synth.NewInvoker(cfg.OpenJTalk.Binary, cfg.OpenJTalk.DictionaryDirectory, log),
		wav.NewDecoder(log),
		sink,
		log,
	)

	initErr := backend.Init()
	if initErr != nil {
		return fmt.Errorf("backend initialization failed: %w", initErr)
	}

	subjects := worker.Subjects{
		Speak:      cfg.NATS.SpeakSubject,
		ListVoices: cfg.NATS.ListVoicesSubject,
		Event:      cfg.NATS.EventSubject,
	}

	natsWorker, err := worker.NewNatsWorker(natsConnection, subjects, backend, sink, log)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System("open_jtalk backend ready, listening for speak requests on %s",
		cfg.NATS.SpeakSubject)

	runErr := natsWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped with error: %w", runErr)
	}

	return backend.Close()
}

// buildSink selects where decoded audio goes based on the playback mode:
// local device output, or the JetStream object store.
func buildSink(
	cfg *config.Config,
	natsConnection *nats.Conn,
	log *logger.Logger,
) (worker.ResultSink, error) {
	if cfg.Playback.Mode == config.ModeLocal {
		return worker.NewLocalSink(playback.NewPortAudioSink(log)), nil
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio object store: %w", err)
	}

	return worker.NewUploadSink(store, log), nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
