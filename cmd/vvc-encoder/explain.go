package main

import (
	"errors"
	"fmt"
	"io"

	"vvc-encoder/internal/session"
	"vvc-encoder/internal/transcoder"
)

// explain prints err with a remediation hint. Startup failures end the run
// here, without a stack trace.
func explain(w io.Writer, err error) {
	switch {
	case errors.Is(err, session.ErrCancelled):
		fmt.Fprintln(w, "\nTranscode cancelled.")

	case errors.Is(err, transcoder.ErrExecutableNotFound):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "Please check the following:")
		fmt.Fprintln(w, "1. ffmpeg is installed")
		fmt.Fprintln(w, "2. the directory containing ffmpeg is listed in PATH")
		fmt.Fprintln(w, "3. if ffmpeg is not installed:")
		fmt.Fprintln(w, "   a. download a build from https://ffmpeg.org/download.html")
		fmt.Fprintln(w, "   b. extract it to a suitable directory")
		fmt.Fprintln(w, "   c. add its bin directory to PATH, or pass --ffmpeg / set VVC_FFMPEG_PATH")

	case errors.Is(err, transcoder.ErrCapabilityUnsupported):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "Please install an ffmpeg build compiled with libvvenc (--enable-libvvenc).")

	case errors.Is(err, transcoder.ErrFileNotFound):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "Check the path and try again.")

	case errors.Is(err, transcoder.ErrValidation):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "Run with --help to see the accepted values.")

	default:
		fmt.Fprintf(w, "\nAn error occurred: %v\n", err)
	}
}
