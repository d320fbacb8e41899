package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"github.com/dmitrijs2005/supportdesk/internal/common"
)

// Prompt seams, replaced in tests.
var (
	readLine     = ReadLine
	readSecret   = ReadSecret
	readJSONBody = ReadJSONBody
)

// Register prompts for name, email and password, creates the account and
// starts a session with the issued credentials. The password byte slice is
// wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := readLine(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := readLine(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := readSecret(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.client.Register(ctx, name, email, string(password)).Get()
	if err != nil {
		a.report(err)
		return err
	}

	a.println("Registered, logged in as", p.Email)
	return nil
}

// Login prompts for email and password and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := readLine(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := readSecret(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.client.Login(ctx, email, string(password)).Get()
	if err != nil {
		a.report(err)
		return err
	}

	a.logger.Info(ctx, "login successful", "user_id", p.ID)
	a.println("Logged in as", p.Email)
	return nil
}

// Logout revokes the session on the server when reachable and always
// forgets it locally.
func (a *App) Logout(ctx context.Context) error {
	if _, err := a.client.Logout(ctx).Get(); err != nil {
		a.report(err)
		return err
	}
	a.println("Logged out")
	return nil
}

// WhoAmI prints the profile of the current user.
func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.client.Me(ctx).Get()
	if err != nil {
		a.report(err)
		return err
	}
	a.println(p.ID, p.Email, p.Name)
	return nil
}

// report prints a failure with a hint matching its kind.
func (a *App) report(err error) {
	var f *outcome.Failure
	if !errors.As(err, &f) {
		a.println("Error:", err)
		return
	}

	switch f.Kind {
	case outcome.TransportFailure:
		a.setMode(ModeOffline)
		a.println("Server unreachable:", f.Message)
	case outcome.AuthenticationFailure:
		a.println("Not authorized:", f.Message, "(use 'login')")
	case outcome.RefreshFailure:
		a.println("Session ended:", f.Message, "(use 'login')")
	case outcome.ValidationFailure:
		a.println("Invalid request:", f.Message)
	default:
		if f.Status != 0 {
			a.println("Server error", f.Status, f.Message)
		} else {
			a.println("Server error:", f.Message)
		}
	}
}
