// Package synth invokes the external Open JTalk synthesis engine as a
// subprocess and collects its WAV output in a temporary file.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/book-expert/logger"
)

// Temp file naming pattern for engine output. os.CreateTemp creates the file
// with owner-only (0600) permissions.
const tempFilePattern = "speechd-openjtalk-*.wav"

// Engine argument flags, matching the open_jtalk command line.
const (
	flagDictionaryDir = "-x"
	flagVoicePath     = "-m"
	flagOutputWAV     = "-ow"
)

// Static errors, one per failure stage.
var (
	// ErrTempFile indicates the output file could not be created; there is
	// nothing for the caller to clean up.
	ErrTempFile = errors.New("failed to create synthesis output file")
	// ErrLaunch indicates the engine process could not be started.
	ErrLaunch = errors.New("failed to start synthesis engine")
	// ErrSynthesisFailed indicates the engine exited with a non-zero status.
	ErrSynthesisFailed = errors.New("synthesis engine exited with failure")
)

// Invoker runs the synthesis engine binary against a dictionary directory
// fixed at construction and a per-request voice resource path.
type Invoker struct {
	binary        string
	dictionaryDir string
	log           *logger.Logger
}

// NewInvoker creates an invoker for the given engine binary and dictionary
// resource directory.
func NewInvoker(binary, dictionaryDir string, log *logger.Logger) *Invoker {
	return &Invoker{
		binary:        binary,
		dictionaryDir: dictionaryDir,
		log:           log,
	}
}

// Synthesize runs the engine against plain text and a resolved voice path,
// streaming the text to the engine's standard input and blocking until it
// exits. It returns the output file path; the path is non-empty whenever the
// file was created, success or failure, because removal is the caller's
// responsibility. The engine is spawned with an argument vector, never a
// shell, so configuration values cannot be interpreted as shell syntax.
func (i *Invoker) Synthesize(ctx context.Context, voicePath, text string) (string, error) {
	tempFile, err := os.CreateTemp("", tempFilePattern)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTempFile, err)
	}

	outputPath := tempFile.Name()

	// The engine opens the path itself; the descriptor is not needed.
	closeErr := tempFile.Close()
	if closeErr != nil {
		return outputPath, fmt.Errorf("%w: %v", ErrTempFile, closeErr)
	}

	cmd := exec.CommandContext(ctx, i.binary,
		flagDictionaryDir, i.dictionaryDir,
		flagVoicePath, voicePath,
		flagOutputWAV, outputPath,
	)
	cmd.Stdin = strings.NewReader(text)

	i.log.Info("executing: %s %s %s %s %s %s %s",
		i.binary,
		flagDictionaryDir, i.dictionaryDir,
		flagVoicePath, voicePath,
		flagOutputWAV, outputPath,
	)

	startErr := cmd.Start()
	if startErr != nil {
		return outputPath, fmt.Errorf("%w: %v", ErrLaunch, startErr)
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		return outputPath, fmt.Errorf("%w: %v", ErrSynthesisFailed, waitErr)
	}

	i.log.Info("synthesis output written to %s", outputPath)

	return outputPath, nil
}
