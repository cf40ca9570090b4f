package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/schemetrace/tjit/tjit"
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/hostsim"
	"github.com/schemetrace/tjit/tjitconfig"
	"github.com/schemetrace/tjit/tjitlog"
	"github.com/schemetrace/tjit/tjitvalue"
)

func main() {
	app := &cli.Command{
		Name:  "tjit-demo",
		Usage: "drive the tracing JIT control core over a toy countdown loop",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Value: 10_000,
				Usage: "initial loop counter",
			},
			&cli.IntFlag{
				Name:  "hot-loop",
				Value: 0,
				Usage: "override hot_loop (0 keeps the built-in default)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file of tunable overrides",
			},
			&cli.BoolFlag{
				Name:  "repl",
				Usage: "drop into an interactive tunable console instead of running once",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log recording starts, aborts, compilations and side-trace arming",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tjit-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := tjitlog.LevelWarn
	if cmd.Bool("verbose") {
		level = tjitlog.LevelDebug
	}
	log := tjitlog.New(level)

	prog, loopStart := buildCountdownProgram()
	interp := hostsim.NewInterp(prog, nil, hostabi.ThreadID(1))
	ctl := tjit.New(&hostsim.Compiler{}, interp, log)
	interp.Ctl = ctl
	defer ctl.Shutdown()

	if path := cmd.String("config"); path != "" {
		if err := tjitconfig.Load(path, ctl.Tunables()); err != nil {
			return err
		}
	}
	if hl := cmd.Int("hot-loop"); hl > 0 {
		if err := ctl.Tunables().SetHotLoop(hl); err != nil {
			return err
		}
	}

	if cmd.Bool("repl") {
		return runREPL(ctl)
	}

	interp.Locals()[0] = tjitvalue.NewInt(int64(cmd.Int("count")))
	interp.Run(50_000_000)

	fmt.Printf("loop entry %s compiled: %v\n", loopStart, ctl.IsRootIP(loopStart))
	fmt.Printf("traces compiled: %s\n", humanize.Comma(int64(ctl.Tunables().TraceID()-1)))
	return nil
}

// buildCountdownProgram assembles: while (locals[0] > 0) { locals[0]-- }
func buildCountdownProgram() (*hostsim.Program, hostabi.IP) {
	p := hostsim.NewProgram()
	loopStart := p.Emit(hostsim.OpConstInt, 0)
	p.Emit(hostsim.OpLoad, 0)
	p.Emit(hostsim.OpLt, 0)
	jmpIfFalse := p.Emit(hostsim.OpJmpIfFalse, 0)
	p.Emit(hostsim.OpLoad, 0)
	p.Emit(hostsim.OpConstInt, 1)
	p.Emit(hostsim.OpSub, 0)
	p.Emit(hostsim.OpStore, 0)
	p.Emit(hostsim.OpJmp, uint32(loopStart))
	exit := p.Emit(hostsim.OpHalt, 0)
	p.Patch(jmpIfFalse, uint32(exit))
	return p, loopStart
}
