package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for email, display name and password (twice) and signs
// the new account in.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Display name (empty: derived from email)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password (min 8 characters)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	u, err := a.auth.Register(ctx, models.Registration{
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		DisplayName:     name,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", u.DisplayName)
	return a.proj.Refresh(ctx)
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, models.Credentials{Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s.\n", u.DisplayName)
	return a.proj.Refresh(ctx)
}

// Logout signs out; unsynced changes are discarded, so the user is told how
// many there were.
func (a *App) Logout(ctx context.Context, _ []string) error {
	pending := a.proj.Snapshot().Pending
	if err := a.proj.Logout(ctx); err != nil {
		return err
	}
	if pending > 0 {
		fmt.Fprintf(a.out, "Signed out. %d unsynced change(s) were discarded.\n", pending)
		return nil
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) Me(ctx context.Context, _ []string) error {
	u := a.proj.Snapshot().User
	if u == nil {
		u = a.auth.CurrentUser()
	}
	if u == nil {
		return failf("No profile loaded; try refresh.")
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.DisplayName, u.Email)
	if u.FocusCourseID != nil {
		if c, ok := a.proj.Snapshot().Course(*u.FocusCourseID); ok {
			fmt.Fprintf(a.out, "Focus: %s\n", c.Title)
		}
	}
	return nil
}

func (a *App) SetName(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Display name", a.out); err != nil {
			return err
		}
	}
	if err := a.proj.SetDisplayName(ctx, name); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

func (a *App) Focus(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	var id *string
	if args[0] != "none" {
		c, err := a.resolveCourse(args[0])
		if err != nil {
			return err
		}
		id = &c.ID
	}
	if err := a.proj.SetFocusCourse(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}
