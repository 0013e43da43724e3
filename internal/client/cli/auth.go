package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsite/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Login prompts for credentials, authenticates and saves the token so the
// next run starts logged in.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	token, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}
	if err := a.state.SaveLogin(ctx, userName, token); err != nil {
		return err
	}

	a.userName = userName
	success.Fprintln(a.out, "Login successful")
	return nil
}

// Logout closes the server-side drafts and forgets the saved token. The
// local token is dropped even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if cerr := a.state.ClearLogin(ctx); cerr != nil {
		return cerr
	}
	a.userName = ""
	if err != nil && !errors.Is(err, client.ErrUnavailable) {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// expire drops a token the server no longer accepts.
func (a *App) expire(ctx context.Context) {
	a.api.SetToken("")
	a.userName = ""
	_ = a.state.ClearLogin(ctx)
}
