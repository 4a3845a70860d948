// Package play previews a video with an external player that exits on its
// own at the end of playback.
package play

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/rawreel/internal/tool"
)

// ErrFileNotFound is returned before the player starts when the file is
// missing.
var ErrFileNotFound = errors.New("file not found")

// ExitNotFound is the exit status reelplay uses for ErrFileNotFound.
const ExitNotFound = 2

// Player runs ffplay through a tool.Runner.
type Player struct {
	Binary string
	Runner tool.Runner
}

// NewPlayer returns a Player using the os/exec runner.
func NewPlayer(binary string) *Player {
	return &Player{Binary: binary, Runner: tool.Exec{}}
}

// Args returns the player arguments for path.
func Args(path string) []string {
	return []string{"-autoexit", "-hide_banner", "-loglevel", "error", path}
}

// Play checks that path exists and then blocks until playback ends.
func (p *Player) Play(ctx context.Context, path string) error {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	res := p.Runner.Run(ctx, tool.Command{
		Name:   p.Binary,
		Args:   Args(path),
		Stdout: os.Stdout,
		Tee:    os.Stderr,
	})
	return res.AsError(p.Binary)
}
