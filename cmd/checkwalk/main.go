package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/checkwalk"
	"github.com/jward/checkwalk/internal/config"
	"github.com/jward/checkwalk/internal/parser"
	"github.com/jward/checkwalk/tree"
)

var flagConfig string

// errFailed makes main exit 1 without printing anything more; the report
// already says why.
var errFailed = errors.New("check failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "checkwalk",
	Short:         "Checkstyle-style static analysis for Java",
	Long:          "Checkwalk parses Java sources, walks each tree once dispatching nodes to the configured checks, and reports the violations that survive the suppression filters.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run, so it prints help.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: checkwalk.yaml searched upward)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(treeCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check Java files and directories",
	Long:  "Analyses every file named and every matching file under every directory named (default: the current directory). Exits 1 when an error-severity violation is found or a file fails.",
	RunE:  runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.String("format", config.DefaultFormat, "output format: text|json")
	f.Int("tab-width", config.DefaultTabWidth, "column width of a tab character")
	f.String("charset", config.DefaultCharset, "encoding of source files")
	f.StringSlice("file-extensions", []string{".java"}, "extensions picked up inside directories")
	f.Int("workers", 0, "files analysed at once (default: number of CPUs)")
	f.String("cache", "", "result cache database; files that passed unchanged are skipped")
	f.Duration("timeout", config.DefaultTimeout, "per-file parse and walk timeout, 0 to disable")
	f.BoolP("verbose", "v", false, "log debug output to stderr")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.ConfigFile != "" {
		logger.Debug("loaded config", zap.String("path", cfg.ConfigFile))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := analyze(ctx, cfg, logger, args)
	if report != nil {
		if werr := writeReport(cmd.OutOrStdout(), cfg.Format, report); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}
	if report.HasErrors() {
		return errFailed
	}
	return nil
}

// analyze builds the engine from cfg and checks every target. Files named
// directly are checked whatever their extension.
func analyze(ctx context.Context, cfg *config.Config, logger *zap.Logger, args []string) (*checkwalk.Report, error) {
	e, err := checkwalk.New(checkwalk.Config{
		TabWidth:       cfg.TabWidth,
		Charset:        cfg.Charset,
		FileExtensions: cfg.FileExtensions,
		Checks:         cfg.Checks,
		Filters:        cfg.Filters,
	}, engineOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	if len(args) == 0 {
		args = []string{"."}
	}
	var files []string
	var reports []*checkwalk.Report
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("path not found: %s", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		r, err := e.AnalyzeDirectory(ctx, arg)
		if r != nil {
			reports = append(reports, r)
		}
		if err != nil {
			return merge(reports), err
		}
	}
	if len(files) > 0 {
		r, err := e.AnalyzeFiles(ctx, files)
		if r != nil {
			reports = append(reports, r)
		}
		if err != nil {
			return merge(reports), err
		}
	}
	return merge(reports), nil
}

func engineOptions(cfg *config.Config, logger *zap.Logger) []checkwalk.Option {
	opts := []checkwalk.Option{
		checkwalk.WithLogger(logger),
		checkwalk.WithWorkers(cfg.Workers),
		checkwalk.WithFileTimeout(cfg.Timeout),
	}
	if cfg.Cache != "" {
		opts = append(opts, checkwalk.WithCache(cfg.Cache))
	}
	return opts
}

// merge concatenates reports from several targets into one.
func merge(reports []*checkwalk.Report) *checkwalk.Report {
	out := &checkwalk.Report{}
	for _, r := range reports {
		if out.RunID == "" {
			out.RunID = r.RunID
		}
		out.Files = append(out.Files, r.Files...)
	}
	out.Summary = checkwalk.Summarize(out.Files)
	return out
}

// newLogger writes to stderr so it never mixes with the report.
func newLogger(verbose bool) (*zap.Logger, error) {
	var zc zap.Config
	if verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		zc.Encoding = "console"
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the node kinds checks and queries are written against",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		writeKinds(cmd.OutOrStdout())
	},
}

func writeKinds(w io.Writer) {
	for _, k := range tree.AllKinds() {
		fmt.Fprintln(w, k)
	}
}

var (
	flagTreeTabWidth int
	flagTreeCharset  string
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the syntax tree of a file, one node per line",
	Long:  "Prints the tree checks see, indented by depth with each node's kind, text and position. Useful for writing SuppressionXpathSingle queries.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpTree(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	treeCmd.Flags().IntVar(&flagTreeTabWidth, "tab-width", config.DefaultTabWidth, "column width of a tab character")
	treeCmd.Flags().StringVar(&flagTreeCharset, "charset", config.DefaultCharset, "encoding of the file")
}

func dumpTree(ctx context.Context, w io.Writer, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := parser.Parse(ctx, filepath.ToSlash(path), src, parser.Options{
		TabWidth:     flagTreeTabWidth,
		Charset:      flagTreeCharset,
		CommentNodes: true,
	})
	if err != nil {
		return err
	}
	return tree.Dump(w, t)
}
