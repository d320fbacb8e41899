package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Call(ctx context.Context, method string, args []string) error
	Burst(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit".
//
//	Not logged in:
//	  - help                     : show available commands
//	  - register                 : create an account
//	  - login                    : authenticate
//	  - status                   : session and connectivity state
//	  - exit | quit              : leave the program
//
//	Logged in:
//	  - whoami                   : show the current user
//	  - get|delete <path>        : call the API
//	  - post|put|patch <path> [json]
//	                             : call the API with a JSON body
//	  - burst <n> <path>         : n concurrent GETs
//	  - status                   : session, refresh and connectivity state
//	  - logout                   : log out
//	  - exit | quit              : leave the program
//
// Errors returned by handlers are ignored; handlers report to the user
// themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sd %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, get, delete, post, put, patch, burst, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "get", "delete", "post", "put", "patch":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <path> [json body]", cmd))
				continue
			}
			_ = a.Call(ctx, methodFor(cmd), args)

		case "burst":
			if len(args) != 2 {
				printlnFn("Usage: burst <n> <path>")
				continue
			}
			_ = a.Burst(ctx, args)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func methodFor(cmd string) string {
	switch cmd {
	case "delete":
		return http.MethodDelete
	case "post":
		return http.MethodPost
	case "put":
		return http.MethodPut
	case "patch":
		return http.MethodPatch
	default:
		return http.MethodGet
	}
}
