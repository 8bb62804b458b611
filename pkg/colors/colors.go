// Package colors provides ANSI colour helpers for terminal output.
package colors

import "strings"

// ANSI colour codes
const (
	Blue    = "\033[34m"
	BoldSeq = "\033[1m"
	Cyan    = "\033[36m"
	Default = "\033[0m"
	Green   = "\033[32m"
	Grey    = "\033[1m\033[30m"
	Red     = "\033[31m"
	Yellow  = "\033[33m"
)

// Wrap returns text wrapped in the given colour code, terminated by a reset.
// Any reset already inside the text is followed by a re-insertion of the
// colour so the wrapping survives nested colouring.
func Wrap(color, text string) string {
	replaced := strings.ReplaceAll(text, Default, Default+color)
	return color + replaced + Default
}

// BlueText returns text that prints blue.
func BlueText(text string) string { return Wrap(Blue, text) }

// Bold returns bolded text.
func Bold(text string) string { return Wrap(BoldSeq, text) }

// CyanText returns text that prints cyan.
func CyanText(text string) string { return Wrap(Cyan, text) }

// GreenText returns text that prints green.
func GreenText(text string) string { return Wrap(Green, text) }

// GreyText returns text that prints grey.
func GreyText(text string) string { return Wrap(Grey, text) }

// RedText returns text that prints red.
func RedText(text string) string { return Wrap(Red, text) }

// YellowText returns text that prints yellow.
func YellowText(text string) string { return Wrap(Yellow, text) }

// NoColor returns text wrapped in the default (reset) code.
func NoColor(text string) string { return Wrap(Default, text) }
