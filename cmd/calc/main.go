// Command calc is a terminal calculator. It reads keypad labels from stdin,
// one or more per line ("12+3=", "AC", "7 * 6 DEL"), and prints the display
// after every line. "quit" or end of input exits.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/display"
	"go-chi-calculator/internal/observability"

	"go.uber.org/zap"
)

func main() {
	locale := flag.String("locale", "en-US", "display locale (BCP 47)")
	logLevel := flag.String("log-level", "error", "log level written to stderr")
	flag.Parse()

	if err := observability.InitLogger(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer observability.SyncLogger()

	if err := calculator.InitMetrics(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tag, ok := display.ParseTag(*locale)
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid locale %q\n", *locale)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Stdin, os.Stdout, display.NewFormatter(tag)); err != nil {
		observability.Logger.Error("calc failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer, f *display.Formatter) error {
	var state calculator.State

	render(out, f, state)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		actions, err := calculator.ParseKeys(line)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}

		for _, action := range actions {
			state = calculator.Dispatch(ctx, state, action)
		}
		render(out, f, state)
	}

	return scanner.Err()
}

func render(out io.Writer, f *display.Formatter, s calculator.State) {
	top, bottom := f.Render(s).Lines()
	fmt.Fprintf(out, "%24s\n%24s\n", top, bottom)
}
