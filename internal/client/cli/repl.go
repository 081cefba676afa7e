package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errUnknownCommand = errors.New("unknown command")

// usageError asks the REPL to print the usage line of a command.
type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

// execIface is the command surface the REPL drives. App implements it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Exec(ctx context.Context, cmd string, args []string) error
	Help() string
}

// runREPL reads one command per line and dispatches it to a. The loop ends on
// EOF, "exit" or "quit", or when ctx is cancelled. Errors returned by commands
// are printed as a single user-facing line; a panicking command prints a
// generic message and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ps %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(a.Help())
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			report(cmd, safeExec(ctx, a, cmd, args))
		}
	}
}

func safeExec(ctx context.Context, a execIface, cmd string, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", cmd, r)
		}
	}()
	return a.Exec(ctx, cmd, args)
}

func report(cmd string, err error) {
	var ue usageError
	var ce cliError
	switch {
	case err == nil:
	case errors.Is(err, errUnknownCommand):
		printlnFn("Unknown command:", cmd)
	case errors.As(err, &ue):
		printlnFn("Usage:", ue.usage)
	case errors.As(err, &ce):
		printlnFn(ce.msg)
	default:
		if msg := services.Message(err); msg != "" {
			printlnFn(msg)
		}
	}
}
