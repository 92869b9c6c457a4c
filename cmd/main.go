package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/jetstack/tag-search/cmd/app"
)

func main() {
	// Writes to a closed pipe (e.g. `tag-search nginx | head`) return EPIPE
	// instead of killing the process.
	signal.Ignore(syscall.SIGPIPE)

	ctx := signalHandler()
	cmd := app.NewCommand(ctx)

	if err := cmd.Execute(); err != nil {
		code := app.ExitCode(err)
		if code != 0 {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

func signalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-ch

		cancel()

		for i := 0; i < 3; i++ {
			logrus.Warnf("received signal %s, shutting down gracefully...", sig)
			sig = <-ch
		}

		logrus.Errorf("received signal %s, force closing", sig)

		os.Exit(1)
	}()

	return ctx
}
