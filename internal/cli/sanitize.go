package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codesan/internal/cache"
	"github.com/dshills/codesan/internal/config"
	"github.com/dshills/codesan/internal/discover"
	"github.com/dshills/codesan/internal/output"
	"github.com/dshills/codesan/internal/redact"
	"github.com/dshills/codesan/internal/sanitizer"
)

// Sanitize flags
var (
	flagPrefix    string
	flagRecursive bool
	flagSkip      = make(map[redact.Category]*bool)
	flagQuiet     bool
	flagVerbose   bool
	flagFormat    string
	flagOut       string
	flagJobs      int
	flagThreshold int
	flagDryRun    bool
	flagStdout    bool
	flagExclude   string
	flagNoCache   bool
)

func addSanitizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPrefix, "prefix", "p", "", "Prefix for output file names (default \"sanitized_\")")
	cmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "Walk directories recursively")
	for _, c := range redact.AllCategories() {
		flagSkip[c] = cmd.Flags().Bool("skip-"+c.FlagName(), false, "Leave "+string(c)+" untouched")
	}
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only report failed files")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show per-file detail and debug logs")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Report file path (default: stdout)")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Files processed in parallel (default: number of CPUs)")
	cmd.Flags().IntVar(&flagThreshold, "threshold", redact.DefaultThreshold, "Placeholders that mark a file as already sanitized (0 disables)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Sanitize and report without writing files")
	cmd.Flags().BoolVar(&flagStdout, "stdout", false, "Write the sanitized text of a single file (or - for stdin) to stdout")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude path globs (comma-separated)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
}

func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	if flagPrefix != "" {
		m["prefix"] = flagPrefix
	}
	if flagRecursive {
		m["recursive"] = "true"
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagJobs > 0 {
		m["jobs"] = strconv.Itoa(flagJobs)
	}
	if cmd.Flags().Changed("threshold") {
		m["threshold"] = strconv.Itoa(flagThreshold)
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	return m
}

// enabledCategories starts from every category and removes those skipped in
// config or by --skip-* flags.
func enabledCategories(cfg config.Config) (redact.CategorySet, error) {
	set := redact.AllEnabled()
	for _, name := range cfg.Skip {
		c, err := redact.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("skip: %w", err)
		}
		set = set.Without(c)
	}
	for c, skip := range flagSkip {
		if skip != nil && *skip {
			set = set.Without(c)
		}
	}
	return set, nil
}

func buildEngine(cfg config.Config) (*redact.Engine, error) {
	threshold := cfg.Threshold
	if threshold < 0 {
		threshold = 0
	}
	opts := []redact.Option{redact.WithThreshold(threshold)}
	if cfg.MatchTimeoutMs > 0 {
		cat, err := redact.BuildDefaultCatalog(time.Duration(cfg.MatchTimeoutMs) * time.Millisecond)
		if err != nil {
			return nil, err
		}
		opts = append(opts, redact.WithCatalog(cat))
	}
	return redact.New(opts...), nil
}

func buildProcessor(cfg config.Config, cats redact.CategorySet, errOut io.Writer) (*sanitizer.Processor, error) {
	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(cfg.Cache.Enabled && !flagNoCache, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return sanitizer.NewProcessor(engine, c, sanitizer.Options{
		Prefix:     cfg.Prefix,
		Categories: cats,
		DryRun:     flagDryRun,
		Jobs:       cfg.Jobs,
	}, newLogger(errOut, flagQuiet, flagVerbose)), nil
}

func runSanitize(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := config.Load(buildOverrides(cmd))
	if err != nil {
		return err
	}
	if _, err := output.GetWriter(cfg.Format, output.Options{}); err != nil {
		return err
	}
	cats, err := enabledCategories(cfg)
	if err != nil {
		return err
	}
	proc, err := buildProcessor(cfg, cats, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if flagStdout {
		if len(args) != 1 {
			return errors.New("--stdout takes exactly one file")
		}
		runStream(cmd, proc, args[0])
		return nil
	}

	found, err := discover.Expand(args, discover.Options{
		Recursive:  cfg.Recursive,
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		SkipPrefix: cfg.Prefix,
	})
	if err != nil && !errors.Is(err, discover.ErrNoFiles) {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := proc.Run(ctx, found.Files)
	report := sanitizer.BuildReport(version, sanitizer.InputInfo{
		Args:       args,
		Categories: categoryNames(cats),
		Prefix:     cfg.Prefix,
		DryRun:     flagDryRun,
	}, results, found.Warnings, start)

	opts := output.Options{Quiet: flagQuiet, Verbose: flagVerbose}
	if err := output.WriteReport(report, cfg.Format, flagOut, cmd.OutOrStdout(), opts); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error writing output: %v\n", err)
		exitCode = ExitFailure
		return nil
	}

	exitCode = report.ExitCode()
	return nil
}

// runStream sanitizes a single file, or stdin for "-", onto stdout.
func runStream(cmd *cobra.Command, proc *sanitizer.Processor, arg string) {
	in := cmd.InOrStdin()
	if arg != "-" {
		f, err := os.Open(arg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitFailure
			return
		}
		defer f.Close()
		in = f
	}
	if _, err := proc.Stream(in, cmd.OutOrStdout()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exitCode = ExitFailure
	}
}

func categoryNames(set redact.CategorySet) []string {
	out := make([]string, 0, len(set))
	for _, c := range set.Sorted() {
		out = append(out, string(c))
	}
	return out
}
