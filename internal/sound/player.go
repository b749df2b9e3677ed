package sound

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Player plays one audio asset. Play blocks until playback ends or ctx is
// cancelled; cancelling ctx must stop the sound.
type Player interface {
	Play(ctx context.Context, assetPath string) error
}

// NopPlayer discards every request. Used when no audio tool is available.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(context.Context, string) error { return nil }

// ExecPlayer plays assets by running an external command with the asset path
// as its last argument.
type ExecPlayer struct {
	Command string
	Args    []string
}

// Play runs the player command. Cancelling ctx kills the process.
func (p ExecPlayer) Play(ctx context.Context, assetPath string) error {
	args := append(append([]string(nil), p.Args...), assetPath)
	out, err := exec.CommandContext(ctx, p.Command, args...).CombinedOutput()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", p.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// candidates are tried in order by DetectPlayer.
var candidates = []ExecPlayer{
	{Command: "afplay"},
	{Command: "paplay"},
	{Command: "aplay", Args: []string{"-q"}},
}

// DetectPlayer returns an ExecPlayer for command when it is set, otherwise the
// first audio tool found on PATH, otherwise NopPlayer.
func DetectPlayer(command string) Player {
	if fields := strings.Fields(command); len(fields) > 0 {
		return ExecPlayer{Command: fields[0], Args: fields[1:]}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c.Command); err == nil {
			return c
		}
	}
	return NopPlayer{}
}
