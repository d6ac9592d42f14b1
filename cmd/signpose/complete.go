package main

import (
	"fmt"
	"strings"
)

var commands = []string{
	"gloss",
	"resolve",
	"timeline",
	"stat",
	"preview",
	"keys",
	"query",
	"import",
	"export",
	"version",
	"bash",
	"help",
}

var (
	pipelineFlagNames = []string{"-dict", "-legacy", "-no-color", "-no-prefix", "-tokens", "-text", "-annotator", "-corpus"}
	convertFlagNames  = []string{"-from", "-to", "-no-progress"}

	commandFlags = map[string][]string{
		"gloss":    {"-format", "-no-color"},
		"resolve":  pipelineFlagNames,
		"stat":     pipelineFlagNames,
		"timeline": append([]string{"-format", "-indent"}, pipelineFlagNames...),
		"preview":  append([]string{"-out", "-distinct"}, pipelineFlagNames...),
		"keys":     {"-dict"},
		"query":    {"-dict", "-legacy", "-no-color", "-no-prefix", "-view"},
		"import":   convertFlagNames,
		"export":   convertFlagNames,
	}
)

// completeCommand handles the autocompletion requests triggered by the bash completion script.
func completeCommand(args []string, ui UI) error {
	for _, c := range getCompletions(args) {
		_, _ = fmt.Fprintln(ui.Out, c)
	}
	return nil
}

// getCompletions completes the command name, the command of help, and the
// flags of a command. args[0] is the binary name.
func getCompletions(args []string) []string {
	if len(args) < 2 {
		return nil
	}

	lastWord := args[len(args)-1]
	cmd := args[1]

	switch {
	case len(args) == 2:
		return withPrefix(commands, lastWord)
	case len(args) == 3 && cmd == "help":
		return withPrefix(commands, lastWord)
	case strings.HasPrefix(lastWord, "-"):
		// accept --flag as well as -flag
		word := "-" + strings.TrimLeft(lastWord, "-")
		return withPrefix(commandFlags[cmd], word)
	}

	return nil
}

func withPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
