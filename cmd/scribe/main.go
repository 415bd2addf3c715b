// Command scribe serves speaker-attributed transcription over HTTP and runs
// one-off transcriptions and migrations from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
