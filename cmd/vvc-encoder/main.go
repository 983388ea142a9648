package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130

	// killGrace bounds how long an interrupt waits for ffmpeg to be reaped.
	killGrace = 3 * time.Second
)

func main() {
	// Setup Context for shutdown. Cancelling it kills a running ffmpeg.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newCLI()

	// We catch SIGINT (Ctrl+C) and SIGTERM. A prompt blocked on stdin can't
	// observe ctx, so the handler exits the process itself once any running
	// ffmpeg has been killed.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
		fmt.Fprintln(os.Stderr, "\n\nProgram interrupted by user")
		if !c.waitForChildren(killGrace) {
			fmt.Fprintln(os.Stderr, "ffmpeg did not exit in time")
		}
		os.Exit(exitInterrupted)
	}()

	os.Exit(c.execute(ctx, os.Args[1:]))
}

// execute runs the CLI and maps the outcome to an exit code.
func execute(ctx context.Context, args []string) int {
	return newCLI().execute(ctx, args)
}

func (c *cli) execute(ctx context.Context, args []string) int {
	c.root.SetArgs(args)

	err := c.root.ExecuteContext(ctx)
	if ctx.Err() != nil {
		// The interrupt handler owns the exit; a killed ffmpeg is not a failure.
		return exitInterrupted
	}
	if err != nil {
		explain(c.root.ErrOrStderr(), err)
		return exitFailure
	}
	if !c.succeeded {
		return exitFailure
	}
	return exitOK
}
