package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrExtractionFailed is matched by every *ExtractionError.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrProcessLaunch is returned when the extraction subprocess cannot be started.
	ErrProcessLaunch = errors.New("launch extraction process")
	// ErrUnsupportedArchive is returned for an archive suffix no extractor handles.
	ErrUnsupportedArchive = errors.New("unsupported archive type")
)

// Extractor unpacks archivePath into destDir.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// ExtractionError reports a failed extraction together with the tool's stderr.
type ExtractionError struct {
	// Archive is the archive that could not be unpacked.
	Archive string
	// ExitCode is the subprocess exit status, or -1 for in-process failures.
	ExitCode int
	// Stderr is the captured standard error of the subprocess.
	Stderr string
	// Err is the underlying cause.
	Err error
}

// Error renders the failure with the captured stderr text.
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("failed to uncompress %s", e.Archive)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrExtractionFailed) hold for every ExtractionError.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// commandFunc builds the subprocess; tests swap it for a helper process.
type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// runInDir runs name with args in dir, capturing stderr.
// A non-zero exit becomes an *ExtractionError; anything else is ErrProcessLaunch.
func runInDir(ctx context.Context, command commandFunc, dir, archive, name string, args ...string) error {
	if command == nil {
		command = exec.CommandContext
	}

	var stderr bytes.Buffer

	cmd := command(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExtractionError{
			Archive:  archive,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrProcessLaunch, name, err)
}
