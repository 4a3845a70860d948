// Command reelplay previews a rendered video with ffplay.
//
// Usage:
//
//	reelplay <video>
//
// The player binary comes from RAWREEL_FFPLAY (or .env), defaulting to ffplay.
// Exit status is 2 when the file does not exist (the player is not started)
// and 1 for a malformed RAWREEL_* variable; otherwise it is the player's own
// status.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/play"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: reelplay <video>")
		return 1
	}
	path := args[0]

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "reelplay: %v\n", err)
		return 1
	}
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "reelplay: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := play.NewPlayer(cfg.FFplayPath).Play(ctx, path)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, play.ErrFileNotFound):
		fmt.Printf("File not found: %s\n", path)
		return play.ExitNotFound
	default:
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() > 0 {
			return ee.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "reelplay: %v\n", err)
		return 1
	}
}
