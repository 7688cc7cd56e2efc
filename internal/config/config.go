// Package config provides the configuration structure for the Open JTalk
// speech backend service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/speech-backends/openjtalk/internal/core"
)

// Defaults applied when the configuration file leaves a field unset.
const (
	DefaultDictionaryDirectory = "/var/lib/mecab/dic/open-jtalk"
	DefaultBinary              = "open_jtalk"
)

// Playback modes.
const (
	ModePublish = "publish"
	ModeLocal   = "local"
)

// OpenJTalkConfig holds the synthesis engine configuration.
//
// VoiceFileSearchPath entries are path templates containing the $VOICE
// placeholder; their order is their priority order.
type OpenJTalkConfig struct {
	Binary              string   `toml:"binary"`
	DictionaryDirectory string   `toml:"dictionary_directory"`
	VoiceFileSearchPath []string `toml:"voice_file_search_path"`
}

// VoiceConfig declares one registered synthesis voice.
type VoiceConfig struct {
	Name       string `toml:"name"`
	Language   string `toml:"language"`
	Type       string `toml:"type"`
	Identifier string `toml:"identifier"`
}

// NATSConfig holds the host transport configuration.
type NATSConfig struct {
	URL                    string `toml:"url"`
	SpeakSubject           string `toml:"speak_subject"`
	ListVoicesSubject      string `toml:"list_voices_subject"`
	EventSubject           string `toml:"event_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// PlaybackConfig selects where decoded audio goes: "publish" uploads it to
// the object store, "local" plays it on the default output device.
type PlaybackConfig struct {
	Mode string `toml:"mode"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	OpenJTalk OpenJTalkConfig `toml:"openjtalk"`
	Voices    []VoiceConfig   `toml:"voices"`
	NATS      NATSConfig      `toml:"nats"`
	Playback  PlaybackConfig  `toml:"playback"`
	Paths     PathsConfig     `toml:"paths"`
}

// Load loads the configuration for the backend service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with their platform defaults.
func (c *Config) ApplyDefaults() {
	if c.OpenJTalk.Binary == "" {
		c.OpenJTalk.Binary = DefaultBinary
	}

	if c.OpenJTalk.DictionaryDirectory == "" {
		c.OpenJTalk.DictionaryDirectory = DefaultDictionaryDirectory
	}

	if c.Playback.Mode == "" {
		c.Playback.Mode = ModePublish
	}
}

// RegisteredVoices converts the declared voice tables into core voices.
func (c *Config) RegisteredVoices() []core.Voice {
	voices := make([]core.Voice, 0, len(c.Voices))

	for _, v := range c.Voices {
		identifier := v.Identifier
		if identifier == "" {
			identifier = v.Name
		}

		voices = append(voices, core.Voice{
			Name:       v.Name,
			Language:   v.Language,
			Type:       core.VoiceType(v.Type),
			Identifier: identifier,
		})
	}

	return voices
}
