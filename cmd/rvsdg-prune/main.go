package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/rvsdg"
	"github.com/wippyai/rvsdg/prune"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Graph file in text form (default stdin)")
		fixpoint    = flag.Bool("fixpoint", false, "Repeat rounds until nothing changes")
		workers     = flag.Int("workers", env.Int("RVSDG_WORKERS", 0), "Concurrent analysis workers (0 = GOMAXPROCS)")
		maxRounds   = flag.Int("max-rounds", env.Int("RVSDG_MAX_ROUNDS", prune.DefaultMaxRounds), "Round limit with -fixpoint")
		report      = flag.Bool("report", false, "Print the per-occurrence report to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := env.Str("RVSDG_LOG_LEVEL", "warn")
	if *verbose {
		level = "debug"
	}
	log, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := rvsdg.Config{
		Fixpoint: *fixpoint,
		Prune: prune.Config{
			Logger:    log,
			Workers:   *workers,
			MaxRounds: *maxRounds,
		},
	}

	src, err := rvsdg.ReadSource(*inFile, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		// log output would tear the alternate screen
		cfg.Prune.Logger = zap.NewNop()
		if err := runInteractive(name(*inFile), src, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(src, cfg, *report, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func name(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(src []byte, cfg rvsdg.Config, report bool, stdout, stderr io.Writer) error {
	out, err := rvsdg.Transform(context.Background(), src, cfg)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := out.WriteText(stdout); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	if report {
		fmt.Fprint(stderr, renderReport(out.Result, useColor(stderr)))
	}
	return nil
}

// useColor reports whether w is a terminal and color is not disabled.
func useColor(w io.Writer) bool {
	if env.Bool("RVSDG_NO_COLOR") || env.Has("NO_COLOR") {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	rewrittenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func renderReport(res *prune.Result, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(headerStyle, "IfElse output pruning"))
	fmt.Fprintf(&b, "\nrounds %d, rewritten %d, skipped %d, eliminated %d, redirected %d\n",
		res.Rounds, res.Rewritten, res.Skipped, res.Eliminated, res.Redirected)
	for i := range res.Occurrences {
		occ := &res.Occurrences[i]
		line := describe(occ)
		if occ.Rewritten() {
			b.WriteString(style(rewrittenStyle, line))
		} else {
			b.WriteString(style(skippedStyle, line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func describe(occ *prune.Occurrence) string {
	if !occ.Rewritten() {
		return fmt.Sprintf("  round %d  %%%d  skipped: %s", occ.Round, occ.IfElse, occ.Skip)
	}
	return fmt.Sprintf("  round %d  %%%d -> %%%d  eliminated %v  common %s",
		occ.Round, occ.IfElse, occ.Replacement, occ.Eliminated, mappings(occ.Common))
}

func mappings(ms []prune.Mapping) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
