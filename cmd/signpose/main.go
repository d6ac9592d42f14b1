package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/revelaction/signpose/config"
	"github.com/revelaction/signpose/file"
	"github.com/revelaction/signpose/gloss"
	"github.com/revelaction/signpose/logger"
	"github.com/revelaction/signpose/query"
	"github.com/revelaction/signpose/render"
	sent "github.com/revelaction/signpose/sentence"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr, In: os.Stdin}

	// warnings (unknown characters) go to stderr, stdout is the output
	logger.Setup(config.Default().FromEnv())

	cmd, args, err := parseMainArgs(os.Args[1:], ui)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, cmd, args, ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fprintErr(ui.Err, err)
		stop()
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "signpose: %v\n", err)
}

func runCommand(ctx context.Context, cmd string, args []string, ui UI) error {
	switch cmd {
	case "help":
		if len(args) > 0 {
			return runCommand(ctx, args[0], []string{"--help"}, ui)
		}
		fs := flag.NewFlagSet("signpose", flag.ContinueOnError)
		fs.SetOutput(ui.Out)
		setupUsage(fs)
		fs.Usage()
		return nil

	case "gloss":
		opts, err := parseGlossArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return glossCommand(opts, ui)

	case "resolve":
		opts, err := parsePipelineArgs("resolve", "Resolve gloss words to whole word and fingerspelled poses.", args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return resolveCommand(ctx, opts, ui)

	case "timeline":
		opts, err := parseTimelineArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return timelineCommand(ctx, opts, ui)

	case "stat":
		opts, err := parsePipelineArgs("stat", "Show token, keyframe and frame counts of an utterance.", args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return statCommand(ctx, opts, ui)

	case "preview":
		opts, err := parsePreviewArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return previewCommand(ctx, opts, ui)

	case "keys":
		opts, prefix, err := parseKeysArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return keysCommand(opts, prefix, ui)

	case "query":
		opts, err := parseQueryArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return queryCommand(ctx, opts, ui)

	case "import":
		opts, err := parseImportArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return importCommand(opts, ui)

	case "export":
		opts, err := parseExportArgs(args, ui)
		if err != nil {
			return helpIsNil(err)
		}
		return exportCommand(opts, ui)

	case "version":
		return versionCommand(ui)

	case "bash":
		if err := parseBashArgs(args, ui); err != nil {
			return helpIsNil(err)
		}
		return bashCommand(ui)

	case "complete":
		completeArgs, err := parseCompleteArgs(args, ui)
		if err != nil {
			return err
		}
		return completeCommand(completeArgs, ui)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func helpIsNil(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// glossCommand orders annotated tokens into gloss. It does not need the
// dictionary.
func glossCommand(opts GlossOptions, ui UI) error {
	tokens, err := readTokens(opts.Source, ui)
	if err != nil {
		return err
	}

	seq, err := gloss.Order(tokens)
	if err != nil {
		return err
	}

	if opts.Format == formatJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Gloss    string         `json:"gloss"`
			Sequence gloss.Sequence `json:"sequence"`
		}{seq.Text(), seq})
	}

	r := render.NewTerminal(ui.Out)
	r.HasColor = !opts.NoColor
	r.Gloss(seq)
	return nil
}

func resolveCommand(ctx context.Context, opts PipelineOptions, ui UI) error {
	res, err := runPipeline(ctx, opts, ui)
	if err != nil {
		return err
	}

	r := terminal(opts, ui)
	if res.Sequence != nil {
		r.Gloss(*res.Sequence)
	}
	r.Tokens(res.Tokens)
	return nil
}

func timelineCommand(ctx context.Context, opts TimelineOptions, ui UI) error {
	res, err := runPipeline(ctx, opts.PipelineOptions, ui)
	if err != nil {
		return err
	}

	var r render.Renderer
	switch opts.Format {
	case formatMsgpack:
		r = render.NewMsgpackRenderer(ui.Out)
	case formatTerminal:
		r = terminal(opts.PipelineOptions, ui)
	default:
		jr := render.NewJSONRenderer(ui.Out)
		jr.Indent = opts.Indent
		r = jr
	}

	return r.Render(res.Timeline)
}

func statCommand(ctx context.Context, opts PipelineOptions, ui UI) error {
	res, err := runPipeline(ctx, opts, ui)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "gloss:    %s\n", res.Text)
	terminal(opts, ui).Stats(res.Stats)
	return nil
}

func previewCommand(ctx context.Context, opts PreviewOptions, ui UI) error {
	res, err := runPipeline(ctx, opts.PipelineOptions, ui)
	if err != nil {
		return err
	}

	r := render.NewPNGRenderer(opts.Out)
	r.Distinct = opts.Distinct
	if err := r.Render(res.Timeline); err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "🎞  wrote %d frames of %q to %s (%s at %d fps)\n",
		r.Written, res.Text, opts.Out, res.Timeline.Duration(), res.Timeline.FPS)
	return nil
}

func keysCommand(opts DictOptions, prefix string, ui UI) error {
	d, err := loadDictionary(opts.DictPath)
	if err != nil {
		return err
	}

	prefix = strings.ToUpper(prefix)
	for _, k := range d.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		fmt.Fprintf(ui.Out, "%s %d\n", k, len(d[k]))
	}

	return nil
}

func queryCommand(ctx context.Context, opts QueryOptions, ui UI) error {
	d, err := loadDictionary(opts.DictPath)
	if err != nil {
		return err
	}

	p := newPipeline(d, opts.Legacy)

	r := render.NewTerminal(ui.Out)
	r.HasColor = !opts.NoColor
	r.HasPrefix = !opts.NoPrefix

	h := query.NewHandler(p, d.Keys(), r)
	h.View = opts.View
	return h.Run(ctx)
}

func terminal(opts PipelineOptions, ui UI) *render.Terminal {
	r := render.NewTerminal(ui.Out)
	r.HasColor = !opts.NoColor
	r.HasPrefix = !opts.NoPrefix
	return r
}

// readTokens reads annotated tokens from a file, or from stdin when the
// source is "-".
func readTokens(source string, ui UI) ([]sent.Token, error) {
	if source == "-" {
		return file.ReadTokens(ui.In)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return file.ReadTokens(f)
}
