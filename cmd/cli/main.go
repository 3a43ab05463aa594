package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/stagehand/internal/app"
	"github.com/vk/stagehand/internal/cli"
	"github.com/vk/stagehand/internal/harness"
	"github.com/vk/stagehand/internal/hcladapter"
)

// main is the entrypoint for the stagehand binary.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		var haltErr *harness.HaltError
		if errors.As(err, &haltErr) {
			// A graceful halt: the error artifact is already written.
			os.Exit(haltErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors (bad manifests, mismatched
	// registrations); recover them into a clean error for the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	loader := hcladapter.NewLoader()
	stagehandApp := app.NewApp(outW, appConfig, loader)

	return stagehandApp.Run(context.Background())
}
