// main package for the speak-client CLI, which publishes one speak request
// to a running backend service and prints the reply.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/speech-backends/openjtalk/internal/config"
	"github.com/speech-backends/openjtalk/internal/worker"
)

// Flag names.
const (
	flagText    = "text"
	flagLang    = "language"
	flagType    = "voice-type"
	flagName    = "voice-name"
	flagVoices  = "voices"
	flagTimeout = "timeout"
)

// Flag descriptions.
const (
	flagTextDesc    = "Text to speak (may contain SSML markup)"
	flagLangDesc    = "Language code, e.g. ja"
	flagTypeDesc    = "Coarse voice type, e.g. MALE1"
	flagNameDesc    = "Exact registered voice name"
	flagVoicesDesc  = "List registered voices and exit"
	flagTimeoutDesc = "Reply timeout"
)

const (
	clientLogFile  = "speak-client.log"
	defaultTimeout = 60 * time.Second
)

// ErrTextRequired indicates the client was invoked without text to speak.
var ErrTextRequired = errors.New("--text must be provided")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text      string
	language  string
	voiceType string
	voiceName string
	voices    bool
	timeout   time.Duration
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	clientLog, err := logger.New(os.TempDir(), clientLogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		closeErr := clientLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	cfg, err := config.Load(clientLog)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	if flags.voices {
		return listVoices(natsConnection, cfg, flags.timeout)
	}

	if flags.text == "" {
		flag.Usage()

		return ErrTextRequired
	}

	return speak(natsConnection, cfg, flags)
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.language, flagLang, "", flagLangDesc)
	flag.StringVar(&flags.voiceType, flagType, "", flagTypeDesc)
	flag.StringVar(&flags.voiceName, flagName, "", flagNameDesc)
	flag.BoolVar(&flags.voices, flagVoices, false, flagVoicesDesc)
	flag.DurationVar(&flags.timeout, flagTimeout, defaultTimeout, flagTimeoutDesc)
	flag.Parse()

	return flags
}

func speak(natsConnection *nats.Conn, cfg *config.Config, flags appFlags) error {
	request := worker.SpeakRequestedEvent{
		RequestID: uuid.NewString(),
		Text:      flags.text,
		Language:  flags.language,
		VoiceType: flags.voiceType,
		VoiceName: flags.voiceName,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal speak request: %w", err)
	}

	replyMsg, err := natsConnection.Request(
		cfg.NATS.SpeakSubject, requestData, flags.timeout)
	if err != nil {
		return fmt.Errorf("speak request failed: %w", err)
	}

	var reply worker.SpeakCompletedEvent

	err = json.Unmarshal(replyMsg.Data, &reply)
	if err != nil {
		return fmt.Errorf("failed to unmarshal reply: %w", err)
	}

	if reply.Error != "" {
		return fmt.Errorf("speak failed: %s", reply.Error)
	}

	if reply.AudioKey != "" {
		fmt.Printf("Audio: %s (%s, %d bit, %d ch, %d Hz, %d frames)\n",
			reply.AudioKey, reply.Format, reply.Bits,
			reply.Channels, reply.SampleRate, reply.FrameCount)
	} else {
		fmt.Printf("Played locally (%d bit, %d ch, %d Hz, %d frames)\n",
			reply.Bits, reply.Channels, reply.SampleRate, reply.FrameCount)
	}

	return nil
}

func listVoices(natsConnection *nats.Conn, cfg *config.Config, timeout time.Duration) error {
	replyMsg, err := natsConnection.Request(
		cfg.NATS.ListVoicesSubject, nil, timeout)
	if err != nil {
		return fmt.Errorf("list-voices request failed: %w", err)
	}

	var voices []worker.VoiceInfo

	err = json.Unmarshal(replyMsg.Data, &voices)
	if err != nil {
		return fmt.Errorf("failed to unmarshal voice list: %w", err)
	}

	for _, v := range voices {
		fmt.Printf("%s\t%s\t%s\n", v.Name, v.Language, v.Type)
	}

	return nil
}
