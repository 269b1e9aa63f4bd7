package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/ansel1/tally/config"
	"github.com/ansel1/tally/engine"
	"github.com/ansel1/tally/identifier"
	"github.com/ansel1/tally/output"
	"github.com/ansel1/tally/results"
	"github.com/ansel1/tally/tui"
)

const summaryReportOnUsage = `How to group results in the report: top-module, module-path or class.
go test packages are keyed by import path with "/" read as ".", so
top-module groups a whole module under its first segment (e.g. "github");
use module-path for one row per package.`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tally", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var flags config.CliFlags
	infile := fs.String("f", "", "Read from file instead of stdin")
	outfile := fs.String("outfile", "", "Save all input to the specified file")
	jsonfile := fs.String("jsonfile", "", "Save JSON events to the specified file")
	fs.BoolVar(&flags.NoTTY, "notty", false, "Don't use TUI, output to stdout")
	mode := identifier.DefaultMode
	fs.Var(&mode, "summary-report-on", summaryReportOnUsage)
	fs.StringVar(&flags.ConfigPath, "config", "", "Config file (default "+config.DefaultConfigFile+" if present)")
	fs.StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel.String(), "Log level (trace, debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	flags.SummaryReportOn = string(mode)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "notty":
			flags.NoTTYSet = true
		case "summary-report-on":
			flags.SummaryReportOnSet = true
		case "log-level":
			flags.LogLevelSet = true
		}
	})

	log.SetOutput(stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	cfg, err := config.Resolve(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	log.SetLevel(cfg.LogLevel)
	log.WithFields(log.Fields{
		"summary-report-on": cfg.SummaryReportOn,
		"source":            cfg.SummaryReportOnSource,
	}).Debug("grouping mode")

	// Setup input source (file or stdin)
	inputSource := stdin
	if *infile != "" {
		f, err := os.Open(*infile)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening input file: %v\n", err)
			return 1
		}
		defer f.Close()
		inputSource = f
	}

	var opts []engine.Option
	if *outfile != "" {
		f, err := os.Create(*outfile)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating output file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts = append(opts, engine.WithRawOutput(f))
	}
	if *jsonfile != "" {
		f, err := os.Create(*jsonfile)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating JSON file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts = append(opts, engine.WithJSONOutput(f))
	}

	engineEvents := engine.NewEngine(opts...).Stream(inputSource)
	aggregator := results.NewAggregator(cfg.SummaryReportOn)

	// Skip TUI if asked to, when reading a file, or when stdout is not a terminal
	skipTUI := cfg.NoTTY || *infile != "" || !isTerminal(stdout)

	if skipTUI {
		simple := output.NewSimpleOutput(stdout, aggregator)
		if err := simple.ProcessEvents(engineEvents); err != nil {
			fmt.Fprintf(stderr, "Error processing events: %v\n", err)
			return 1
		}
		if simple.HasFailures() {
			return 1
		}
		return 0
	}

	m := tui.NewModel(aggregator, !cfg.NoColor)
	p := tea.NewProgram(m, tea.WithOutput(stdout))

	// Forward engine events to bubbletea
	go func() {
		for evt := range engineEvents {
			p.Send(tui.EngineEventMsg(evt))
		}
		p.Send(tui.EOFMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(stderr, "Error running program: %v\n", err)
		return 1
	}

	model, ok := finalModel.(*tui.Model)
	if !ok {
		return 1
	}
	if model.Err != nil {
		fmt.Fprintf(stderr, "Error processing events: %v\n", model.Err)
		return 1
	}
	if err := model.DisplaySummary(stdout); err != nil {
		fmt.Fprintf(stderr, "Error writing summary: %v\n", err)
		return 1
	}
	if model.HasFailures() {
		return 1
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
