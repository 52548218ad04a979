package ui

import (
	"fmt"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOpen   = 214 // amber
	colorClosed = 114 // green
	colorWarn   = 203 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderGate renders a gate state as OPEN or CLOSED.
func RenderGate(st model.GateState) string {
	switch st {
	case model.GateOpen:
		return paint(colorOpen, "OPEN")
	case model.GateClosed:
		return paint(colorClosed, "CLOSED")
	}
	return paint(colorMuted, string(st))
}

// RenderLink renders the link status message, red unless connected.
func RenderLink(s model.LinkStatus) string {
	switch {
	case s.Healthy():
		return paint(colorClosed, s.Message())
	case s == model.LinkWaiting:
		return paint(colorMuted, s.Message())
	}
	return paint(colorWarn, s.Message())
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
