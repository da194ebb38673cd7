package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "1.4.0"

func init() {
	// -v belongs to --verbose
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := rootCommand(runner)
	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errConfigCreated) {
			os.Exit(0)
		}
		logError(logger, err)
		os.Exit(1)
	}
}

// logError logs the error message. At debug level every wrapped error in the chain is logged as well.
func logError(logger *log.Logger, err error) {
	logger.Error(err.Error())
	if logger.GetLevel() > log.DebugLevel {
		return
	}
	for depth, e := 1, errors.Unwrap(err); e != nil; depth, e = depth+1, errors.Unwrap(e) {
		logger.Debug("caused by", "depth", depth, "type", fmt.Sprintf("%T", e), "err", e.Error())
	}
}
