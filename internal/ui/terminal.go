package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether ANSI colors should be written to f.
//
// GATEWATCH_COLOR=always|never overrides everything else. Otherwise NO_COLOR
// (https://no-color.org) and CLICOLOR_FORCE / CLICOLOR are honored before
// falling back to TTY detection.
func ShouldUseColor(f *os.File) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GATEWATCH_COLOR"))) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
