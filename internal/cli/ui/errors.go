// Package ui formats terminal output of the forge CLI
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a message block:
//
//	✗ UNKNOWN TYPE: cannot find resource type "artcles".
//
//	   Did you mean: articles?
//
//	   → List registered types: forge types
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	symbol, attr := "✗", color.FgRed
	switch opts.Level {
	case ErrorLevelWarning:
		symbol, attr = "!", color.FgYellow
	case ErrorLevelInfo:
		symbol, attr = "i", color.FgCyan
	}
	header := newColor(opts.NoColor, attr, color.Bold)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		help := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to w
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// UnknownTypeError reports a resource type missing from the registry
func UnknownTypeError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "unknown type",
		Problem:      fmt.Sprintf("cannot find resource type %q.", name),
		Suggestions:  FindSimilar(name, known, nil),
		HelpCommands: []string{"List registered types: forge types"},
		NoColor:      noColor,
	})
}

// UnknownModeError reports an unrecognised encoding mode
func UnknownModeError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "unknown mode",
		Problem:      fmt.Sprintf("%q is not an encoding mode.", name),
		Suggestions:  FindSimilar(name, known, nil),
		HelpCommands: []string{"List modes and their flags: forge presets"},
		NoColor:      noColor,
	})
}

// ConfigError reports an invalid configuration
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "configuration error",
		Problem: message,
		HelpCommands: []string{
			"View config: cat forge.yaml",
			"Get help: forge --help",
		},
		NoColor: noColor,
	})
}

// Warning formats a warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}
