package sampler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// runFunc executes a program and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Command samples by running an external program that prints
// "process<TAB>title" on one line. Empty output means no window.
type Command struct {
	Argv []string
	Now  func() time.Time

	run runFunc
}

func NewCommand(argv []string) *Command {
	return &Command{Argv: argv, Now: time.Now, run: execRun}
}

func (c *Command) Sample(ctx context.Context) (Observation, error) {
	if len(c.Argv) == 0 {
		return Observation{}, fmt.Errorf("sampler command is empty")
	}
	out, err := c.run(ctx, c.Argv[0], c.Argv[1:]...)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrNoWindow, err)
	}

	line := strings.TrimRight(string(out), "\r\n")
	process, title, ok := strings.Cut(line, "\t")
	if !ok || process == "" || title == "" {
		return Observation{}, ErrNoWindow
	}
	return Observation{ProcessName: process, RawTitle: title, SampledAt: c.Now()}, nil
}

// X11 samples the focused window through xdotool and reads the process
// name from procfs.
type X11 struct {
	ProcRoot string
	Now      func() time.Time

	run runFunc
}

func NewX11() *X11 {
	return &X11{ProcRoot: "/proc", Now: time.Now, run: execRun}
}

// Sample queries pid and name of the active window in one xdotool run so
// both belong to the same window.
func (x *X11) Sample(ctx context.Context) (Observation, error) {
	out, err := x.run(ctx, "xdotool", "getactivewindow", "getwindowpid", "getwindowname")
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrNoWindow, err)
	}
	pidLine, title, ok := strings.Cut(string(out), "\n")
	if !ok {
		return Observation{}, ErrNoWindow
	}
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil || pid <= 0 {
		return Observation{}, ErrNoWindow
	}

	comm, err := os.ReadFile(filepath.Join(x.ProcRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrNoWindow, err)
	}

	title = strings.TrimRight(title, "\r\n")
	process := strings.TrimSpace(string(comm))
	if process == "" || title == "" {
		return Observation{}, ErrNoWindow
	}
	return Observation{ProcessName: process, RawTitle: title, SampledAt: x.Now()}, nil
}
