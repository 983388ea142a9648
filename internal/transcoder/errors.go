package transcoder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecutableNotFound means no ffmpeg binary could be located.
	ErrExecutableNotFound = errors.New("ffmpeg executable not found")
	// ErrCapabilityUnsupported means ffmpeg was found but lacks the required encoder.
	ErrCapabilityUnsupported = errors.New("required encoder not supported")
	// ErrFileNotFound means an input video does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrValidation means a transcode argument was rejected before launch.
	ErrValidation = errors.New("invalid argument")
)

// NotFoundError carries everything the locator looked at.
type NotFoundError struct {
	Binary      string
	Searched    []string
	PathEntries []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: could not find %q\n", ErrExecutableNotFound, e.Binary)
	b.WriteString("current PATH entries:\n")
	for _, p := range e.PathEntries {
		b.WriteString("  " + p + "\n")
	}
	b.WriteString("searched:\n")
	for _, p := range e.Searched {
		b.WriteString("  " + p + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *NotFoundError) Unwrap() error {
	return ErrExecutableNotFound
}

// UnsupportedError indicates the located ffmpeg build has no encoder named Encoder.
type UnsupportedError struct {
	Encoder string
	Version string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("ffmpeg build (%s) does not provide encoder %s", e.Version, e.Encoder)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrCapabilityUnsupported
}
