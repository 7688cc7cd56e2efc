package voice

import (
	"errors"

	"github.com/speech-backends/openjtalk/internal/core"
)

// ErrNoVoiceConfigured indicates that no voices are registered at all. It is
// fatal to module startup.
var ErrNoVoiceConfigured = errors.New(
	"the module does not have any voice configured, " +
		"please add them in the configuration file, " +
		"or install the required files")

// Registry holds the set of registered synthesis voices. It is populated
// once at load time and read-only afterward.
type Registry struct {
	voices []core.Voice
}

// NewRegistry creates a registry over the configured voices.
func NewRegistry(voices []core.Voice) *Registry {
	return &Registry{
		voices: voices,
	}
}

// Validate fails when the registry is empty, which makes the backend
// unusable.
func (r *Registry) Validate() error {
	if len(r.voices) == 0 {
		return ErrNoVoiceConfigured
	}

	return nil
}

// Identifier derives the voice identifier for a language and coarse voice
// type. A voice matching both wins; otherwise any voice of the language is
// an acceptable fallback. It reports false when the language has no voice at
// all.
func (r *Registry) Identifier(language string, voiceType core.VoiceType) (string, bool) {
	for _, v := range r.voices {
		if v.Language == language && v.Type == voiceType {
			return v.Identifier, true
		}
	}

	for _, v := range r.voices {
		if v.Language == language {
			return v.Identifier, true
		}
	}

	return "", false
}

// ExistsByName reports whether a voice with the given selection name is
// registered.
func (r *Registry) ExistsByName(name string) bool {
	for _, v := range r.voices {
		if v.Name == name {
			return true
		}
	}

	return false
}

// List returns the registered voices in registration order.
func (r *Registry) List() []core.Voice {
	listed := make([]core.Voice, len(r.voices))
	copy(listed, r.voices)

	return listed
}
