// Package query is the interactive gloss prompt: every line entered is
// resolved against the dictionary and printed in the current view.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/render"
)

const (
	completionThreshold = 1

	// maxSuggestions is the number of dictionary keys offered at once
	maxSuggestions = 12
)

// Views the prompt cycles through with Ctrl+F.
const (
	ViewTokens = "tokens"
	ViewFrames = "frames"
	ViewStats  = "stats"
)

var views = []string{ViewTokens, ViewFrames, ViewStats}

// Runner resolves and assembles gloss text.
type Runner interface {
	RunGloss(ctx context.Context, text string) (pipeline.Result, error)
}

type Handler struct {
	Runner   Runner
	Keys     []string
	Renderer *render.Terminal

	// View is the current output view
	View string
}

func NewHandler(r Runner, keys []string, t *render.Terminal) *Handler {
	return &Handler{
		Runner:   r,
		Keys:     keys,
		Renderer: t,
		View:     ViewTokens,
	}
}

// NextView cycles the output view.
func (h *Handler) NextView() string {
	h.View = nextView(h.View)
	return h.View
}

// NextPrefix toggles the line prefix icons.
func (h *Handler) NextPrefix() bool {
	h.Renderer.HasPrefix = !h.Renderer.HasPrefix
	return h.Renderer.HasPrefix
}

func nextView(current string) string {
	for i, v := range views {
		if v == current {
			return views[(i+1)%len(views)]
		}
	}

	return views[0]
}

func (h *Handler) Run(ctx context.Context) error {

	fmt.Fprintln(h.Renderer.W, "🔑 Ctrl+X: Toggle prefix, Ctrl+F: next View, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {
		in := prompt.Input("      🤟 ", h.completer(),
			prompt.OptionTitle("signpose query"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(maxSuggestions),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					fmt.Fprintln(h.Renderer.W, "View set to: "+h.NextView())
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					fmt.Fprintf(h.Renderer.W, "Prefix set to %t\n", h.NextPrefix())
				}}),
		)

		if in == "quit" {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.TrimSpace(in) == "" {
			continue
		}

		history = append(history, in)

		if err := h.Eval(ctx, in); err != nil {
			fmt.Fprintf(h.Renderer.W, "Error: %v\n", err)
		}
	}
}

// Eval runs one gloss line and prints it in the current view. The input is
// uppercased, as the dictionary keys are.
func (h *Handler) Eval(ctx context.Context, in string) error {
	res, err := h.Runner.RunGloss(ctx, strings.ToUpper(in))
	if err != nil {
		return err
	}

	return Print(h.Renderer, h.View, res)
}

// Print writes the result in the given view.
func Print(t *render.Terminal, view string, res pipeline.Result) error {
	switch view {
	case ViewFrames:
		return t.Render(res.Timeline)
	case ViewStats:
		t.Stats(res.Stats)
	default:
		t.Tokens(res.Tokens)
	}

	return nil
}

func (h *Handler) completer() func(in prompt.Document) []prompt.Suggest {
	return func(in prompt.Document) []prompt.Suggest {
		return Suggest(h.Keys, in.GetWordBeforeCursor())
	}
}

// Suggest returns the dictionary keys starting with the last word typed.
// Single letter keys are left out; they are only spelled.
func Suggest(keys []string, word string) []prompt.Suggest {
	s := []prompt.Suggest{}
	if len(word) < completionThreshold {
		return s
	}

	word = strings.ToUpper(word)
	for _, k := range keys {
		if len(k) < 2 || !strings.HasPrefix(k, word) {
			continue
		}

		s = append(s, prompt.Suggest{Text: k, Description: "🤟 word"})
	}

	return s
}
