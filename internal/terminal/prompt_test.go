package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLineTrims(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompterFrom(strings.NewReader("  sqlserver://db  \n"), &out)

	got, err := p.Line("DSN: ")
	if err != nil {
		t.Fatalf("Line() error = %v", err)
	}
	if got != "sqlserver://db" {
		t.Errorf("Line() = %q", got)
	}
	if out.String() != "DSN: " {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestLineWithoutTrailingNewline(t *testing.T) {
	p := NewPrompterFrom(strings.NewReader("sk-abc"), &bytes.Buffer{})
	got, err := p.Line("key: ")
	if err != nil {
		t.Fatalf("Line() error = %v", err)
	}
	if got != "sk-abc" {
		t.Errorf("Line() = %q", got)
	}
}

func TestSecretFallsBackToLineForReaders(t *testing.T) {
	p := NewPrompterFrom(strings.NewReader("hunter2\n"), &bytes.Buffer{})
	got, err := p.Secret("password: ")
	if err != nil {
		t.Fatalf("Secret() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Secret() = %q", got)
	}
}

func TestClearPreviousLines(t *testing.T) {
	var buf bytes.Buffer
	ClearPreviousLines(&buf, 10)
	if n := strings.Count(buf.String(), "\x1b[2K"); n != 2 {
		t.Errorf("cleared %d lines, want 2", n)
	}
}
