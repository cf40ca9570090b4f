package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/schemetrace/tjit/tjit"
)

// runREPL is a tiny console for poking at a Controller's tunables
// live, grounded on the teacher's interactive-shell command loop
// (cmd/hey's runInteractiveShell) but built on chzyer/readline instead
// of a raw bufio.Scanner since this one benefits from history and
// line editing across a longer session.
func runREPL(ctl *tjit.Controller) error {
	rl, err := readline.New("tjit> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("tjit-demo interactive console. Try: get hot-loop | set hot-loop 20 | quit")
	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <name>")
				continue
			}
			handleGet(ctl, fields[1])
		case "set":
			if len(fields) != 3 {
				fmt.Println("usage: set <name> <value>")
				continue
			}
			handleSet(ctl, fields[1], fields[2])
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func handleGet(ctl *tjit.Controller, name string) {
	t := ctl.Tunables()
	switch name {
	case "hot-loop":
		fmt.Println(t.HotLoop())
	case "hot-exit":
		fmt.Println(t.HotExit())
	case "max-record":
		fmt.Println(t.MaxRecord())
	case "max-retries":
		fmt.Println(t.MaxRetries())
	case "max-sides":
		fmt.Println(t.MaxSides())
	case "try-sides":
		fmt.Println(t.TrySides())
	case "num-unrolls":
		fmt.Println(t.NumUnrolls())
	case "trace-id":
		fmt.Println(t.TraceID())
	default:
		fmt.Printf("unknown tunable %q\n", name)
	}
}

func handleSet(ctl *tjit.Controller, name, value string) {
	v, err := strconv.Atoi(value)
	if err != nil {
		fmt.Printf("invalid integer %q\n", value)
		return
	}

	t := ctl.Tunables()
	var setErr error
	switch name {
	case "hot-loop":
		setErr = t.SetHotLoop(v)
	case "hot-exit":
		setErr = t.SetHotExit(v)
	case "max-record":
		setErr = t.SetMaxRecord(v)
	case "max-retries":
		setErr = t.SetMaxRetries(v)
	case "max-sides":
		setErr = t.SetMaxSides(v)
	case "try-sides":
		setErr = t.SetTrySides(v)
	case "num-unrolls":
		setErr = t.SetNumUnrolls(v)
	default:
		fmt.Printf("unknown tunable %q\n", name)
		return
	}
	if setErr != nil {
		fmt.Println(setErr)
	}
}
