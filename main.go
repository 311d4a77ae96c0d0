package main

import (
	"fmt"
	"os"

	"github.com/amsot/twfcode/cmd"
	"github.com/amsot/twfcode/internal/buildinfo"
	"github.com/amsot/twfcode/internal/logger"
)

// Injected at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   string
	buildDate string
)

func main() {
	root := cmd.RootCommand(buildinfo.NewContext(version, buildDate))

	err := root.Execute()
	if flushErr := logger.Global().Flush(); flushErr != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", flushErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
