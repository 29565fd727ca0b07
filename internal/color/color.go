// Package color provides ANSI colour helpers for CLI output. Every helper
// degrades to the plain string when Enabled is false, so callers never need
// to guard their output — call Init once at program start.
package color

import "os"

// Enabled is true when ANSI colour output is supported.
var Enabled bool

// Init detects whether stdout is a colour-capable terminal. Colour is
// suppressed when NO_COLOR is set, TERM=dumb, or stdout is not a terminal.
func Init() {
	if os.Getenv("NO_COLOR") != "" {
		return
	}
	if os.Getenv("TERM") == "dumb" {
		return
	}
	stat, err := os.Stdout.Stat()
	if err != nil {
		return
	}
	Enabled = stat.Mode()&os.ModeCharDevice != 0
}

func seq(code, s string) string {
	if !Enabled || s == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func Bold(s string) string    { return seq("1", s) }
func Dim(s string) string     { return seq("2", s) }
func Green(s string) string   { return seq("32", s) }
func Yellow(s string) string  { return seq("33", s) }
func Cyan(s string) string    { return seq("36", s) }
func BoldRed(s string) string { return seq("1;31", s) }
