package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pipesched/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Env{}, os.Args[1:])
	cancel()
	os.Exit(code)
}
