// Command pwmfft converts oscilloscope PWM captures into spectra, harmonic
// tables and graphs.
//
// Usage:
//
//	pwmfft [run] [flags]
//	pwmfft windows [window-name ...]
//	pwmfft synth [file]
//
// Without a subcommand it analyzes ./csv into ./output.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/pwmfft/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
