package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/credstore"
	"github.com/pssteam/steamfetch/internal/steam"
)

// login establishes a session. The user chooses anonymous or account login;
// for account login the local vault is offered both for loading previously
// saved credentials and for saving the ones that just worked.
func (a *App) login(ctx context.Context) error {
	if a.client.LoggedIn() {
		fmt.Fprintln(a.out, "Already logged in. Logout first to switch accounts.")
		return nil
	}

	anonymous, err := GetYesNo(a.reader, "Login anonymously?", a.out)
	if err != nil {
		return err
	}
	if anonymous {
		if err := a.client.Login(ctx, nil); err != nil {
			return fmt.Errorf("anonymous login: %w", err)
		}
		a.log.Info(ctx, "logged in", "account", "anonymous")
		fmt.Fprintln(a.out, "Logged in anonymously.")
		return nil
	}

	creds, fromVault, err := a.collectCredentials(ctx)
	if err != nil {
		return err
	}
	if creds == nil {
		fmt.Fprintln(a.out, "Login cancelled.")
		return nil
	}

	if err := a.client.Login(ctx, creds); err != nil {
		return fmt.Errorf("login as %s: %w", creds.Username, err)
	}
	a.log.Info(ctx, "logged in", "account", creds.Username)
	fmt.Fprintf(a.out, "Logged in as %s.\n", creds.Username)

	if !fromVault {
		a.offerSaveCredentials(ctx, creds)
	}
	return nil
}

// collectCredentials returns account credentials either from the vault or
// typed in by the user. fromVault reports which path produced them; a nil
// result with nil error means the user backed out.
func (a *App) collectCredentials(ctx context.Context) (creds *steam.Credentials, fromVault bool, err error) {
	store, err := credstore.Open(a.config.VaultPath)
	if err != nil {
		a.log.Warn(ctx, "credential vault unavailable", "path", a.config.VaultPath, "error", err)
	} else {
		defer store.Close()

		creds, err = a.loadSavedCredentials(ctx, store)
		if err != nil {
			return nil, false, err
		}
		if creds != nil {
			return creds, true, nil
		}
	}

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(username) == "" {
		return nil, false, nil
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return nil, false, err
	}
	return &steam.Credentials{Username: username, Password: string(password)}, false, nil
}

// loadSavedCredentials offers the vault record, if any. A wrong passphrase is
// reported and falls through to manual entry.
func (a *App) loadSavedCredentials(ctx context.Context, store *credstore.Store) (*steam.Credentials, error) {
	use, err := GetYesNo(a.reader, "Use saved credentials from the vault?", a.out)
	if err != nil {
		return nil, err
	}
	if !use {
		return nil, nil
	}

	passphrase, err := GetPassword(a.out, "Vault passphrase")
	if err != nil {
		return nil, err
	}
	username, password, err := store.Load(passphrase)
	switch {
	case errors.Is(err, common.ErrNoCredentials):
		fmt.Fprintln(a.out, "No credentials saved yet.")
		return nil, nil
	case errors.Is(err, common.ErrBadPassphrase):
		fmt.Fprintln(a.out, "Wrong passphrase.")
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &steam.Credentials{Username: username, Password: password}, nil
}

// offerSaveCredentials asks whether to store the credentials that just logged
// in. Vault failures are reported but never fail the login itself.
func (a *App) offerSaveCredentials(ctx context.Context, creds *steam.Credentials) {
	save, err := GetYesNo(a.reader, "Save these credentials to the local vault?", a.out)
	if err != nil || !save {
		return
	}

	store, err := credstore.Open(a.config.VaultPath)
	if err != nil {
		fmt.Fprintf(a.out, "Could not open vault: %v\n", err)
		return
	}
	defer store.Close()

	passphrase, err := GetPassword(a.out, "Choose a vault passphrase")
	if err != nil {
		return
	}
	if err := store.Save(passphrase, creds.Username, creds.Password); err != nil {
		fmt.Fprintf(a.out, "Could not save credentials: %v\n", err)
		return
	}
	a.log.Info(ctx, "credentials saved", "path", a.config.VaultPath)
	fmt.Fprintln(a.out, "Credentials saved.")
}

func (a *App) logout(ctx context.Context) error {
	if !a.client.LoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.client.Logout()
	a.log.Info(ctx, "logged out")
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// ensureLoggedIn logs in anonymously when no session exists yet, so download
// and verify flows work without an explicit login step.
func (a *App) ensureLoggedIn(ctx context.Context) error {
	if a.client.LoggedIn() {
		return nil
	}
	a.log.Info(ctx, "no session, logging in anonymously")
	if err := a.client.Login(ctx, nil); err != nil {
		return fmt.Errorf("anonymous login: %w", err)
	}
	return nil
}
