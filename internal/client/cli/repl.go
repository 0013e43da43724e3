package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Activity(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Submit(ctx context.Context) error
	Cancel(ctx context.Context) error
	Detach(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Order(ctx context.Context, args []string) error
	report(err error)
}

// runREPL reads commands from scanner until EOF, "exit" or "quit". The
// first token is the command and the rest are its arguments. Command errors
// are handed to report and never stop the loop.
//
//	Not logged in:  help, login, exit
//	Logged in:      use <collection>, list, activity [n], new, edit <id>,
//	                set <field>=<value>..., show, submit, cancel, detach,
//	                upload <file>, delete <id>, order <id>..., logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("site> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn("Available commands: use, (l)ist, activity, new, edit, set, show, submit, cancel, detach, upload, delete, order, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}
			continue
		}
		if cmd != "login" && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		var err error
		switch cmd {
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "use":
			err = a.Use(ctx, args)
		case "l", "list":
			err = a.List(ctx)
		case "activity":
			err = a.Activity(ctx, args)
		case "new":
			err = a.New(ctx)
		case "edit":
			err = a.Edit(ctx, args)
		case "set":
			err = a.Set(ctx, args)
		case "show":
			err = a.Show(ctx)
		case "submit":
			err = a.Submit(ctx)
		case "cancel":
			err = a.Cancel(ctx)
		case "detach":
			err = a.Detach(ctx)
		case "upload":
			err = a.Upload(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "order":
			err = a.Order(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
		if err != nil {
			a.report(err)
		}
	}
}
