package pageid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEmptyDigest is returned when the hash command prints nothing usable.
var ErrEmptyDigest = errors.New("hash command produced no digest")

// ErrEmptyCommand is returned when a Command generator has no program to run.
var ErrEmptyCommand = errors.New("hash command is empty")

// Command generates IDs by running an external hashing program, writing the
// content to its stdin and taking the first whitespace-separated token of its
// stdout. The default program is `sha256sum -`.
type Command struct {
	Path string   // program to run
	Args []string // arguments passed to the program
}

// NewCommand parses a command line such as "sha256sum -" into a Command.
func NewCommand(commandLine string) (*Command, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

// Generate runs the hash command once for content.
func (c *Command) Generate(ctx context.Context, content []byte) (ID, error) {
	if c.Path == "" {
		return "", ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(content)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("pageid: %s: %w: %s", c.Path, err, msg)
		}
		return "", fmt.Errorf("pageid: %s: %w", c.Path, err)
	}

	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return "", fmt.Errorf("pageid: %s: %w", c.Path, ErrEmptyDigest)
	}
	return ID(fields[0]), nil
}

// Validate checks that the hash program can be found on PATH.
func (c *Command) Validate() error {
	if c.Path == "" {
		return ErrEmptyCommand
	}
	if _, err := exec.LookPath(c.Path); err != nil {
		return fmt.Errorf("pageid: %s not found: %w", c.Path, err)
	}
	return nil
}
