package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revelaction/signpose/query"
	"github.com/revelaction/signpose/storage/loader"
)

const (
	formatJSON     = "json"
	formatMsgpack  = "msgpack"
	formatTerminal = "terminal"
	formatText     = "text"
)

// DictOptions selects the coordinate dictionary.
type DictOptions struct {
	DictPath string
}

// PipelineOptions select the dictionary and one of the three inputs: a
// token file, English text or gloss words as arguments.
type PipelineOptions struct {
	DictOptions

	Legacy   bool
	NoColor  bool
	NoPrefix bool

	Tokens       string
	Text         string
	AnnotatorURL string
	CorpusPath   string

	Gloss []string
}

type GlossOptions struct {
	Source  string
	Format  string
	NoColor bool
}

type TimelineOptions struct {
	PipelineOptions

	Format string
	Indent bool
}

type PreviewOptions struct {
	PipelineOptions

	Out      string
	Distinct bool
}

type QueryOptions struct {
	DictOptions

	Legacy   bool
	NoColor  bool
	NoPrefix bool
	View     string
}

type ConvertOptions struct {
	From       string
	To         string
	NoProgress bool
}

// enumFlag implements flag.Value for restricted strings
type enumFlag struct {
	allowed []string
	value   *string
}

func (e *enumFlag) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumFlag) Set(value string) error {
	for _, a := range e.allowed {
		if a == value {
			*e.value = value
			return nil
		}
	}
	return fmt.Errorf("allowed values are %s", strings.Join(e.allowed, ", "))
}

func parseMainArgs(args []string, ui UI) (string, []string, error) {
	fs := flag.NewFlagSet("signpose", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	setupUsage(fs)

	if err := parseFlags(fs, args, ui); err != nil {
		return "", nil, err
	}

	if fs.NArg() == 0 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return "", nil, errors.New("no command provided")
	}

	cmd := fs.Arg(0)
	cmdArgs := fs.Args()[1:]
	return cmd, cmdArgs, nil
}

// parseFlags parses args printing the usage on help (to Out) or on error
// (to Err).
func parseFlags(fs *flag.FlagSet, args []string, ui UI) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return err
	}

	return nil
}

func dictFlags(fs *flag.FlagSet, opts *DictOptions) {
	fs.StringVar(&opts.DictPath, "dict", os.Getenv("SIGNPOSE_DICT"), "Path to the coordinate dictionary, JSON file or SQLite database")
	fs.StringVar(&opts.DictPath, "d", os.Getenv("SIGNPOSE_DICT"), "alias for -dict")
}

func pipelineFlags(fs *flag.FlagSet, opts *PipelineOptions) {
	dictFlags(fs, &opts.DictOptions)

	fs.BoolVar(&opts.Legacy, "legacy", false, "Keep one token per distinct gloss word")
	fs.BoolVar(&opts.Legacy, "l", false, "alias for -legacy")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show output without formatting (color)")
	fs.BoolVar(&opts.NoColor, "c", false, "alias for -no-color")

	fs.BoolVar(&opts.NoPrefix, "no-prefix", false, "Show output without line prefixes")
	fs.BoolVar(&opts.NoPrefix, "x", false, "alias for -no-prefix")

	fs.StringVar(&opts.Tokens, "tokens", "", "Read annotated tokens from this JSON file (- for stdin) instead of gloss words")
	fs.StringVar(&opts.Tokens, "t", "", "alias for -tokens")

	fs.StringVar(&opts.Text, "text", "", "Annotate this English text instead of reading gloss words")

	fs.StringVar(&opts.AnnotatorURL, "annotator", os.Getenv("SIGNPOSE_ANNOTATOR_URL"), "URL of the annotator service used by -text")
	fs.StringVar(&opts.CorpusPath, "corpus", os.Getenv("SIGNPOSE_CORPUS"), "Directory of annotated docs used by -text when no annotator URL is set")
}

// checkInput requires exactly one of -tokens, -text or gloss words.
func checkInput(fs *flag.FlagSet, opts *PipelineOptions, ui UI) error {
	opts.Gloss = fs.Args()

	n := 0
	if opts.Tokens != "" {
		n++
	}
	if opts.Text != "" {
		n++
	}
	if len(opts.Gloss) > 0 {
		n++
	}

	if n > 1 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return errors.New("give only one of -tokens, -text or gloss words")
	}

	if opts.Text != "" && opts.AnnotatorURL == "" && opts.CorpusPath == "" {
		return errors.New("-text needs -annotator or -corpus (or SIGNPOSE_ANNOTATOR_URL, SIGNPOSE_CORPUS)")
	}

	if opts.DictPath == "" {
		return errors.New("Dictionary path must be specified via -d or SIGNPOSE_DICT")
	}

	return nil
}

func inputUsage(fs *flag.FlagSet, name, description string) {
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s %s [options] [GLOSS WORD ...]\n", os.Args[0], name)
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  %s\n", description)
		_, _ = fmt.Fprintf(fs.Output(), "  Without gloss words, -tokens or -text, the empty gloss is used.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}
}

func parsePipelineArgs(name, description string, args []string, ui UI) (PipelineOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts PipelineOptions
	pipelineFlags(fs, &opts)
	inputUsage(fs, name, description)

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	return opts, checkInput(fs, &opts, ui)
}

func parseTimelineArgs(args []string, ui UI) (TimelineOptions, error) {
	fs := flag.NewFlagSet("timeline", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts TimelineOptions
	pipelineFlags(fs, &opts.PipelineOptions)

	opts.Format = formatJSON
	formatFlag := &enumFlag{allowed: []string{formatJSON, formatMsgpack, formatTerminal}, value: &opts.Format}
	fs.Var(formatFlag, "format", "Output json, length prefixed msgpack or a terminal summary")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.BoolVar(&opts.Indent, "indent", false, "Indent the JSON output")
	fs.BoolVar(&opts.Indent, "i", false, "alias for -indent")

	inputUsage(fs, "timeline", "Assemble the frame timeline of an utterance.")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	return opts, checkInput(fs, &opts.PipelineOptions, ui)
}

func parsePreviewArgs(args []string, ui UI) (PreviewOptions, error) {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts PreviewOptions
	pipelineFlags(fs, &opts.PipelineOptions)

	fs.StringVar(&opts.Out, "out", "frames", "Directory the PNG frames are written to")
	fs.StringVar(&opts.Out, "o", "frames", "alias for -out")

	fs.BoolVar(&opts.Distinct, "distinct", false, "Write a run of identical frames only once")

	inputUsage(fs, "preview", "Draw the timeline frames as numbered PNG files.")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	if opts.Out == "" {
		return opts, errors.New("-out must not be empty")
	}

	return opts, checkInput(fs, &opts.PipelineOptions, ui)
}

func parseGlossArgs(args []string, ui UI) (GlossOptions, error) {
	fs := flag.NewFlagSet("gloss", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts GlossOptions
	opts.Format = formatText
	formatFlag := &enumFlag{allowed: []string{formatText, formatJSON}, value: &opts.Format}
	fs.Var(formatFlag, "format", "Output the gloss as text with its buckets or as json")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show output without formatting (color)")
	fs.BoolVar(&opts.NoColor, "c", false, "alias for -no-color")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s gloss [options] <tokens.json|->\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Order annotated tokens into gloss. The input is a JSON token array or an annotated doc.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	if fs.NArg() != 1 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return opts, errors.New("gloss command needs exactly one argument: <tokens.json|->")
	}

	opts.Source = fs.Arg(0)
	return opts, nil
}

func parseKeysArgs(args []string, ui UI) (DictOptions, string, error) {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts DictOptions
	dictFlags(fs, &opts)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s keys [options] [prefix]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List the dictionary keys with their number of keyframes.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, "", err
	}

	if fs.NArg() > 1 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return opts, "", errors.New("keys command accepts at most one argument")
	}

	return opts, fs.Arg(0), nil
}

func parseQueryArgs(args []string, ui UI) (QueryOptions, error) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts QueryOptions
	dictFlags(fs, &opts.DictOptions)

	fs.BoolVar(&opts.Legacy, "legacy", false, "Keep one token per distinct gloss word")
	fs.BoolVar(&opts.Legacy, "l", false, "alias for -legacy")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show output without formatting (color)")
	fs.BoolVar(&opts.NoColor, "c", false, "alias for -no-color")

	fs.BoolVar(&opts.NoPrefix, "no-prefix", false, "Show output without line prefixes")
	fs.BoolVar(&opts.NoPrefix, "x", false, "alias for -no-prefix")

	opts.View = query.ViewTokens
	viewFlag := &enumFlag{allowed: []string{query.ViewTokens, query.ViewFrames, query.ViewStats}, value: &opts.View}
	fs.Var(viewFlag, "view", "Initial view: resolved tokens, frame runs or stats")
	fs.Var(viewFlag, "v", "alias for -view")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s query [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Enter interactive gloss mode.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	if opts.DictPath == "" {
		return opts, errors.New("Dictionary path must be specified via -d or SIGNPOSE_DICT")
	}

	return opts, nil
}

func parseConvertArgs(name, description string, args []string, ui UI) (ConvertOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts ConvertOptions
	fs.StringVar(&opts.From, "from", "", "Source dictionary")
	fs.StringVar(&opts.To, "to", "", "Target dictionary")
	fs.BoolVar(&opts.NoProgress, "no-progress", false, "Do not show the progress bar")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s %s --from <path> --to <path>\n", os.Args[0], name)
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  %s\n", description)
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	if opts.From == "" || opts.To == "" {
		return opts, errors.New("--from and --to are required")
	}

	return opts, nil
}

func parseImportArgs(args []string, ui UI) (ConvertOptions, error) {
	opts, err := parseConvertArgs("import", "Import a JSON dictionary file into a SQLite database.", args, ui)
	if err != nil {
		return opts, err
	}

	if !loader.IsSQLite(opts.To) {
		return opts, fmt.Errorf("--to must be a SQLite database (.db, .sqlite, .sqlite3): %s", opts.To)
	}

	return opts, nil
}

func parseExportArgs(args []string, ui UI) (ConvertOptions, error) {
	opts, err := parseConvertArgs("export", "Export a SQLite dictionary database to a JSON file.", args, ui)
	if err != nil {
		return opts, err
	}

	if !loader.IsSQLite(opts.From) {
		return opts, fmt.Errorf("--from must be a SQLite database (.db, .sqlite, .sqlite3): %s", opts.From)
	}

	return opts, nil
}

func parseBashArgs(args []string, ui UI) error {
	fs := flag.NewFlagSet("bash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s bash\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Output bash completion script.\n")
	}

	return parseFlags(fs, args, ui)
}

func parseCompleteArgs(args []string, ui UI) ([]string, error) {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return fs.Args(), nil
}

func setupUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: %s command [command options] [arguments...]\n", os.Args[0])
		_, _ = fmt.Fprintf(output, "\nDescription:\n")
		_, _ = fmt.Fprintf(output, "  Turn English utterances into sign language gloss and hand pose frames\n")
		_, _ = fmt.Fprintf(output, "\nCommands:\n")
		_, _ = fmt.Fprintf(output, "  gloss     Order annotated tokens into gloss.\n")
		_, _ = fmt.Fprintf(output, "  resolve   Resolve gloss words to dictionary poses.\n")
		_, _ = fmt.Fprintf(output, "  timeline  Assemble the frame timeline (json, msgpack, terminal).\n")
		_, _ = fmt.Fprintf(output, "  stat      Show statistics of an utterance.\n")
		_, _ = fmt.Fprintf(output, "  preview   Draw the timeline as PNG frames.\n")
		_, _ = fmt.Fprintf(output, "  keys      List the dictionary keys.\n")
		_, _ = fmt.Fprintf(output, "  query     Enter interactive gloss mode.\n")
		_, _ = fmt.Fprintf(output, "  import    Import a JSON dictionary into SQLite.\n")
		_, _ = fmt.Fprintf(output, "  export    Export a SQLite dictionary to JSON.\n")
		_, _ = fmt.Fprintf(output, "  version   Show the version.\n")
		_, _ = fmt.Fprintf(output, "  bash      Output bash completion script.\n")
		_, _ = fmt.Fprintf(output, "  help      Show help for a command.\n")
	}
}
