// promptwait submits a generation job to a ComfyUI-compatible service and waits for it.
//
// Usage:
//
//	promptwait run --job <file.json|file.yaml|-> [--max-wait 300s] [--interval 2s] [--json]
//	promptwait run --template <name> --image <path> [--prefix <p>]
//	promptwait probe
//	promptwait submit --job <file>
//	promptwait wait <prompt-id>
//	promptwait templates
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/target/promptwait/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()
	os.Exit(code) //nolint:forbidigo // CLI must propagate the outcome as its exit status
}

type streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// execute runs one command line and maps the result onto an exit status.
func execute(ctx context.Context, args []string, s streams) int {
	a := &app{streams: s}
	defer a.close(ctx)

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	if werr := writef(s.Err, "%s: %v\n", apperrors.Describe(err), err); werr != nil && a.logger != nil {
		a.logger.ErrorContext(ctx, "print error failed", "error", werr)
	}
	return apperrors.ExitCode(err)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
