package main

import (
	"fmt"
	"os"

	"github.com/toyz/apimod/internal/cli"
	"github.com/toyz/apimod/internal/errors"
)

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		// diagnostics of a failed run have already been printed
		if !errors.Is(err, cli.ErrDiagnosticsReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
