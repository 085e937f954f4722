package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrompterString(t *testing.T) {
	in := strings.NewReader("\n  \nAAPL\n")
	var out bytes.Buffer
	p := NewPrompterFromReader(in, &out)

	got, err := p.String("ticker")
	if err != nil {
		t.Fatalf("String() error: %v", err)
	}
	if got != "AAPL" {
		t.Fatalf("String() = %q, want AAPL", got)
	}
	if !strings.Contains(out.String(), "ticker:") {
		t.Fatalf("prompt text missing from output: %q", out.String())
	}
}

func TestPrompterStringInputClosed(t *testing.T) {
	p := NewPrompterFromReader(strings.NewReader(""), &bytes.Buffer{})
	if _, err := p.String("ticker"); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("String() at EOF error = %v, want ErrInputClosed", err)
	}
}

func TestPrompterFloat(t *testing.T) {
	in := strings.NewReader("abc\n2.35\n")
	var out bytes.Buffer
	p := NewPrompterFromReader(in, &out)

	got, err := p.Float("premium")
	if err != nil {
		t.Fatalf("Float() error: %v", err)
	}
	if got != 2.35 {
		t.Fatalf("Float() = %v, want 2.35", got)
	}
	if !strings.Contains(out.String(), "invalid number") {
		t.Fatalf("expected retry message, output: %q", out.String())
	}
}

func TestPrompterFloatInputClosed(t *testing.T) {
	// A stream that ends on an unparseable line must not loop or return 0.
	p := NewPrompterFromReader(strings.NewReader("abc\n"), &bytes.Buffer{})
	if _, err := p.Float("premium"); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("Float() at EOF error = %v, want ErrInputClosed", err)
	}
}
