package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and printFn are test seams for REPL output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Watch(ctx context.Context) error
	Tasks(ctx context.Context, args []string) error
	AddTask(ctx context.Context) error
	EditTask(ctx context.Context, args []string) error
	DeleteTask(ctx context.Context, args []string) error
	ToggleTask(ctx context.Context, args []string, completed bool) error
	Customize(ctx context.Context) error
	CreateCharacter(ctx context.Context) error
	Journal(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (d)ashboard, tasks [all|completed|uncompleted], add, edit <id>, " +
		"delete <id>, done <id>, undo <id>, customize, create, watch, journal [add], logout, exit"
)

// runREPL reads commands from reader until EOF or "exit"/"quit" and
// dispatches them to a. Errors returned by handlers are printed and the loop
// goes on.
//
// Commands that need a session are refused while logged out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("buddy %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			if isSessionCommand(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "d", "dashboard":
			report(a.Dashboard(ctx))
		case "watch":
			report(a.Watch(ctx))
		case "tasks", "l", "list":
			report(a.Tasks(ctx, args))
		case "add":
			report(a.AddTask(ctx))
		case "edit":
			report(a.EditTask(ctx, args))
		case "delete":
			report(a.DeleteTask(ctx, args))
		case "done":
			report(a.ToggleTask(ctx, args, true))
		case "undo":
			report(a.ToggleTask(ctx, args, false))
		case "customize":
			report(a.Customize(ctx))
		case "create":
			report(a.CreateCharacter(ctx))
		case "journal":
			report(a.Journal(ctx, args))
		case "logout":
			report(a.Logout(ctx))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isSessionCommand(cmd string) bool {
	switch cmd {
	case "d", "dashboard", "watch", "tasks", "l", "list", "add", "edit", "delete",
		"done", "undo", "customize", "create", "journal", "logout":
		return true
	}
	return false
}

func report(err error) {
	if err != nil {
		printlnFn(userMessage(err))
	}
}
