package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/liminalpurple/flyerkit/internal/cli"
)

var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
