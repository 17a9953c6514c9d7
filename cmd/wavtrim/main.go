// This tool trims, previews and exports audio clips, and serves the same
// operations over HTTP.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		stop()
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCmd(newApp())
	root.SetArgs(args)
	root.SetOut(out)

	return root.ExecuteContext(ctx)
}
