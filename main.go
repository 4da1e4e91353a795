package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jvitoroc/gorule/bindings"
	"github.com/jvitoroc/gorule/eval"
	"github.com/jvitoroc/gorule/grammar"
	"github.com/jvitoroc/gorule/rule"
)

func main() {
	if _, ok := os.LookupEnv("DEBUG"); ok {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, osfs.New("."), os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("error evaluating rules", "error", err)
		os.Exit(1)
	}
}

type opts struct {
	rulesFile  string
	valuesFile string
	path       string
	maxDepth   int
	trace      bool
	tokens     bool
	debug      bool
}

func parseOpts(args []string, stderr io.Writer) (opts, error) {
	var options opts

	flags := flag.NewFlagSet("gorule", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&options.rulesFile, "rules", "", "Path to the rules file")
	flags.StringVar(&options.valuesFile, "values", "", "Path to the JSON bindings file")
	flags.StringVar(&options.path, "path", "", "JSONPath of the bindings object inside the values file")
	flags.IntVar(&options.maxDepth, "max-depth", eval.DefaultMaxDepth, "Maximum nesting of a condition")
	flags.BoolVar(&options.trace, "trace", false, "Print the result of every clause")
	flags.BoolVar(&options.tokens, "tokens", false, "Print the tokens of the rules file and exit")
	flags.BoolVar(&options.debug, "debug", false, "Enable debug logging")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gorule -rules <file> [-values <file>] [options]\n\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return opts{}, err
	}

	if options.rulesFile == "" {
		flags.Usage()
		return opts{}, errors.New("rules file must be specified")
	}

	return options, nil
}

func run(ctx context.Context, fs billy.Filesystem, args []string, stdout, stderr io.Writer) error {
	options, err := parseOpts(args, stderr)
	if err != nil {
		return err
	}

	source, err := util.ReadFile(fs, options.rulesFile)
	if err != nil {
		return fmt.Errorf("error reading rules: %w", err)
	}

	if options.tokens {
		return printTokens(stdout, string(source))
	}

	values := eval.Bindings{}
	if options.valuesFile != "" {
		values, err = bindings.Load(fs, options.valuesFile, options.path)
		if err != nil {
			return err
		}
	}

	logger := slog.Default()
	if options.debug {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	engine := rule.New(
		grammar.Frontend{MaxDepth: options.maxDepth},
		rule.Config{MaxDepth: options.maxDepth, Logger: logger},
	)

	if options.trace {
		tr, err := engine.Trace(ctx, string(source), values)
		if err != nil {
			return err
		}

		return printTrace(stdout, tr)
	}

	v, err := engine.Evaluate(ctx, string(source), values)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, formatValue(v))
	return err
}

func printTokens(w io.Writer, source string) error {
	tokens, err := grammar.Tokenize(source)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tk := range tokens {
		fmt.Fprintf(tw, "%s\t%q\t%s\n", tk.Kind, tk.Text, tk.Position)
	}

	return tw.Flush()
}

func printTrace(w io.Writer, tr *rule.Trace) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "trace %s\n", tr.ID)
	fmt.Fprintln(tw, "#\tTRUTH\tVALUE\tCONDITION")
	for _, c := range tr.Clauses {
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", c.Index+1, c.Truth, formatValue(c.Value), c.Condition)
	}
	fmt.Fprintf(tw, "ELSE\t%t\t%s\t\n", tr.Else.Truth, formatValue(tr.Else.Value))

	if err := tw.Flush(); err != nil {
		return err
	}

	selected := "ELSE"
	if tr.Selected >= 0 {
		selected = "IF statement " + strconv.Itoa(tr.Selected+1)
	}

	_, err := fmt.Fprintf(w, "result: %s (%s)\n", formatValue(tr.Value), selected)
	return err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
