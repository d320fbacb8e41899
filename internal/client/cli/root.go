package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if p, ok := a.client.Profile(); ok && p.Email != "" {
		s = p.Email + " "
	} else if a.isLoggedIn() {
		s = "session "
	}
	if m := a.getMode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, restores or starts a session and runs the REPL
// until exit or EOF.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to supportdesk CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	if a.isLoggedIn() {
		_ = a.WhoAmI(ctx)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.PingInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
