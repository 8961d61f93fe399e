package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/cli"
	"github.com/Veraticus/disaster-pipeline/internal/common"
)

var version = "dev"

func main() {
	handler := cli.NewInterruptHandler(os.Stderr)
	ctx := handler.HandleInterrupts(context.Background())

	err := newRootCmd().ExecuteContext(ctx)
	handler.Stop() // Always cleanup

	if handler.WasInterrupted() {
		fmt.Fprintln(os.Stderr, cli.FormatInfo(cli.InterruptOutcome(err)))
	} else if err != nil {
		reportError(os.Stderr, err)
	}
	if err != nil {
		os.Exit(1)
	}
}

// reportError prints the user-facing message of err, followed by the
// underlying cause when there is one.
func reportError(w io.Writer, err error) {
	msg := common.UserMessage(err)
	fmt.Fprintln(w, cli.FormatError(msg))
	if cause := strings.TrimPrefix(err.Error(), msg+": "); cause != msg {
		fmt.Fprintln(w, cli.FormatDetail("cause", cause))
	}
}
