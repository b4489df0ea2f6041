// Package main provides the x86sim command, which boots an emulated PC.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Globals holds flags shared by every command.
type Globals struct {
	Verbose bool `short:"v" help:"Log debug messages."`
}

// Logger returns a text logger on stderr at the verbosity requested.
func (g *Globals) Logger() *slog.Logger {
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type cli struct {
	Globals

	Run     runCmd     `cmd:"" default:"withargs" help:"Boot a machine."`
	Console consoleCmd `cmd:"" help:"Debug a machine from a Lua console."`
	Config  configCmd  `cmd:"" help:"Write a machine configuration file."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("x86sim"),
		kong.Description("An 8086/V20 PC emulator."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
}
