package display

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Role identifies what a piece of output represents; the color system
// maps roles to terminal colors
type Role int

const (
	RoleHeader Role = iota
	RoleAdded
	RoleRemoved
	RoleMuted
	RoleEmphasis
	RoleError
)

// ColorSystem handles color application and terminal detection
type ColorSystem struct {
	enabled bool
	profile termenv.Profile
	colors  map[Role]*color.Color
}

// NewColorSystem creates a color system with terminal detection. Passing
// forceDisable overrides detection, for --no-color and tests.
func NewColorSystem(forceDisable bool) *ColorSystem {
	cs := &ColorSystem{
		enabled: !forceDisable && detectColorSupport(),
		profile: termenv.ColorProfile(),
		colors: map[Role]*color.Color{
			RoleHeader:   color.New(color.FgCyan, color.Bold),
			RoleAdded:    color.New(color.FgGreen),
			RoleRemoved:  color.New(color.FgRed),
			RoleMuted:    color.New(color.Faint),
			RoleEmphasis: color.New(color.Bold),
			RoleError:    color.New(color.FgRed, color.Bold),
		},
	}
	return cs
}

// detectColorSupport checks if the terminal supports colors
func detectColorSupport() bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// Enabled reports whether colored output is active
func (cs *ColorSystem) Enabled() bool {
	return cs.enabled
}

// Sprint returns text rendered in the color for a role, or unchanged
// when colors are off
func (cs *ColorSystem) Sprint(role Role, text string) string {
	if !cs.enabled {
		return text
	}
	c, ok := cs.colors[role]
	if !ok {
		return text
	}
	return c.Sprint(text)
}

// Sprintf formats and renders in the color for a role
func (cs *ColorSystem) Sprintf(role Role, format string, args ...interface{}) string {
	if !cs.enabled {
		c := color.New()
		c.DisableColor()
		return c.Sprintf(format, args...)
	}
	c, ok := cs.colors[role]
	if !ok {
		c = color.New()
	}
	return c.Sprintf(format, args...)
}
