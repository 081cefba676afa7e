package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) AddAssignment(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	due, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	link, err := getSimpleText(a.reader, "Link (optional)", a.out)
	if err != nil {
		return err
	}

	as, err := a.proj.AddAssignment(ctx, c.ID, models.NewAssignment{
		Title:   title,
		DueDate: optional(due),
		Link:    optional(link),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added assignment %q.\n", as.Title)
	a.saved()
	return nil
}

func (a *App) Assignment(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	as, err := resolveAssignment(c, args[1])
	if err != nil {
		return err
	}

	if args[2] == "note" {
		if as.Note != "" {
			fmt.Fprintf(a.out, "Current note:\n%s\n", as.Note)
		}
		note, err := getMultiline(a.reader, "New note", a.out)
		if err != nil {
			return err
		}
		if err := a.proj.UpdateAssignmentNote(ctx, c.ID, as.ID, note); err != nil {
			return err
		}
		a.saved()
		return nil
	}

	status, ok := assignmentStatusAliases[args[2]]
	if !ok {
		return failf("Unknown assignment status %q; use one of %s or note.", args[2], aliasKeys(assignmentStatusAliases))
	}
	if err := a.proj.UpdateAssignmentStatus(ctx, c.ID, as.ID, status); err != nil {
		return err
	}
	a.saved()
	return nil
}

func (a *App) RemoveAssignment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	as, err := resolveAssignment(c, args[1])
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Delete assignment %q?", as.Title))
	if err != nil || !ok {
		return err
	}
	if err := a.proj.DeleteAssignment(ctx, c.ID, as.ID); err != nil {
		return err
	}
	a.saved()
	return nil
}
