package pageid

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

// vectors are digests produced by `sha256sum -` for the given input.
var vectors = []struct {
	name    string
	content string
	want    ID
}{
	{"polish sentence", "Ala ma kota\n", "c51bc001db0206126e1681ba88497ce583f077a92e427e4f62da96b691d28813"},
	{"utf8 content", "Zawartość naprawdę naprawdę naprawdę wielkiego pliku 1234567890\n", "69bddbdc52992ae9952d3368d48bfe0517ce346d6040e495de3542926294498b"},
	{"backslash", "\\", "a9253dc8529dd214e5f22397888e78d3390daa47593e26f68c18f97fd7a3876b"},
	{"double quote", "\"", "8a331fdde7032f33a71e1b2e257d80166e348e00fcb17914f48bdb57a1c63007"},
	{"shell metacharacters", "\";vim;\"", "7bf3d6ee225efb5369fcd0bad0bbb7bd0ddd150d7a7ff0a66463be1c12d41ee9"},
	{"dollar variable", "$PATH", "b99efa99a1eacea2e9f9ddc7d800c55f5430d517a88d643ec521cde9d73b54ea"},
}

func TestSHA256Generate(t *testing.T) {
	t.Parallel()

	for _, tt := range vectors {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SHA256{}.Generate(context.Background(), []byte(tt.content))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate(%q) = %s, want %s", tt.content, got, tt.want)
			}
		})
	}
}

func TestCommandGenerate_MatchesSHA256(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sha256sum"); err != nil {
		t.Skip("sha256sum not available")
	}
	gen, err := NewCommand("sha256sum -")
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	for _, tt := range vectors {
		got, err := gen.Generate(context.Background(), []byte(tt.content))
		if err != nil {
			t.Fatalf("Generate(%q): %v", tt.content, err)
		}
		if got != tt.want {
			t.Errorf("Generate(%q) = %s, want %s", tt.content, got, tt.want)
		}
	}
}

func TestCommandGenerate_FirstToken(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	gen := &Command{Path: "cat"}
	got, err := gen.Generate(context.Background(), []byte("  abc123 trailing words\n"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Generate() = %q, want %q", got, "abc123")
	}

	_, err = gen.Generate(context.Background(), []byte("   \n"))
	if !errors.Is(err, ErrEmptyDigest) {
		t.Errorf("Generate(blank) error = %v, want ErrEmptyDigest", err)
	}
}

func TestNewCommand(t *testing.T) {
	t.Parallel()

	if _, err := NewCommand("   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("NewCommand(blank) error = %v, want ErrEmptyCommand", err)
	}

	c, err := NewCommand("shasum -a 256 -")
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	if c.Path != "shasum" {
		t.Errorf("Path = %q, want shasum", c.Path)
	}
	if len(c.Args) != 3 || c.Args[0] != "-a" || c.Args[2] != "-" {
		t.Errorf("Args = %v, want [-a 256 -]", c.Args)
	}
}

func TestCommandValidate_MissingProgram(t *testing.T) {
	t.Parallel()

	c := &Command{Path: "pulsar-no-such-hasher"}
	if err := c.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing program")
	}
}

func TestIDShort(t *testing.T) {
	t.Parallel()

	id := ID("abcdef")
	if got := id.Short(3); got != "abc" {
		t.Errorf("Short(3) = %q, want abc", got)
	}
	if got := id.Short(10); got != "abcdef" {
		t.Errorf("Short(10) = %q, want abcdef", got)
	}
}
