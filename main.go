package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"github.com/mitchellh/colorstring"
	"github.com/sirupsen/logrus"

	"unblur/lib"
)

// Exit codes. Every distinct failure class gets its own code so shell
// callers can branch without parsing messages.
const (
	exitOK = iota
	exitUsage
	exitMissingInput
	exitUnrecognized
	exitDecode
	exitEncode
	exitNoEncoder
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("unblur", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "verbose diagnostic logging")
	quiet := fs.Bool("quiet", false, "suppress progress bar and summary output")
	reportPath := fs.String("report", "", "write a YAML run report to this path")
	plotPath := fs.String("plot", "", "write a per-frame delta chart (PNG) to this path")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: unblur [flags] input_path output_path [sharpness_level]")
		fmt.Fprintf(fs.Output(), "\nsharpness_level is an integer between %d and %d (default %d)\n\n",
			lib.MinLevel, lib.MaxLevel, lib.DefaultLevel)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		fs.Usage()
		return exitUsage
	}
	input, output := rest[0], rest[1]

	color.Output = ansi.NewAnsiStdout()

	level := lib.DefaultLevel
	if len(rest) == 3 {
		n, err := strconv.Atoi(rest[2])
		switch {
		case err != nil:
			colorstring.Printf("[yellow]Sharpness level must be an integer, using default %d.\n", lib.DefaultLevel)
		case n < lib.MinLevel || n > lib.MaxLevel:
			colorstring.Printf("[yellow]Sharpness level must be between %d and %d, using default %d.\n",
				lib.MinLevel, lib.MaxLevel, lib.DefaultLevel)
		default:
			level = n
		}
	}

	report, err := lib.ProcessMedia(input, output, lib.Options{
		Level:      level,
		Progress:   !*quiet,
		ReportPath: *reportPath,
		PlotPath:   *plotPath,
		Logger:     newLogger(*debug),
	})
	if err != nil {
		code := exitCode(err)
		switch code {
		case exitMissingInput:
			colorstring.Fprintf(color.Error, "[red]Error: the file %s does not exist.\n", input)
		case exitUnrecognized:
			colorstring.Fprintf(color.Error, "[red]Error: the file format is not recognized as either an image or video type.\n")
		default:
			colorstring.Fprintf(color.Error, "[red]Error: %v\n", err)
		}
		return code
	}

	if !*quiet {
		colorstring.Printf("\n[green]Sharpened %s saved to %s\n", report.Media, report.Output)
	}
	return exitOK
}

func newLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(logrus.WarnLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return exitMissingInput
	case errors.Is(err, lib.ErrUnrecognizedMedia):
		return exitUnrecognized
	case errors.Is(err, lib.ErrEncoderUnavailable):
		return exitNoEncoder
	case errors.Is(err, lib.ErrDecodeFailed):
		return exitDecode
	case errors.Is(err, lib.ErrEncodeFailed):
		return exitEncode
	}
	return exitUsage
}
