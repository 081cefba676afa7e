package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

func (a *App) AddLecture(ctx context.Context, args []string) error {
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
	video, err := getSimpleText(a.reader, "Video URL", a.out)
	if err != nil {
		return err
	}
	minutes, err := getSimpleText(a.reader, "Duration in minutes (optional)", a.out)
	if err != nil {
		return err
	}

	nl := models.NewLecture{Title: title, VideoURL: video}
	if minutes != "" {
		n, err := strconv.Atoi(minutes)
		if err != nil {
			return failf("Duration must be a whole number of minutes.")
		}
		nl.DurationMinutes = &n
	}

	l, err := a.proj.AddLecture(ctx, c.ID, nl)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added lecture #%d %q.\n", l.Order, l.Title)
	a.saved()
	return nil
}

// Lecture sets a lecture's status, or with "note" replaces its note.
func (a *App) Lecture(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	l, err := resolveLecture(c, args[1])
	if err != nil {
		return err
	}

	if args[2] == "note" {
		if l.Note != "" {
			fmt.Fprintf(a.out, "Current note:\n%s\n", l.Note)
		}
		note, err := getMultiline(a.reader, "New note", a.out)
		if err != nil {
			return err
		}
		if err := a.proj.UpdateLectureNote(ctx, c.ID, l.ID, note); err != nil {
			return err
		}
		a.saved()
		return nil
	}

	status, ok := lectureStatusAliases[args[2]]
	if !ok {
		return failf("Unknown lecture status %q; use one of %s or note.", args[2], aliasKeys(lectureStatusAliases))
	}
	if err := a.proj.UpdateLectureStatus(ctx, c.ID, l.ID, status); err != nil {
		return err
	}

	if updated, ok := a.proj.Snapshot().Course(c.ID); ok && updated.Status != c.Status {
		fmt.Fprintf(a.out, "%s is now %s.\n", updated.Title, updated.Status)
	}
	a.saved()
	return nil
}

func (a *App) RemoveLecture(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	l, err := resolveLecture(c, args[1])
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Delete lecture %q?", l.Title))
	if err != nil || !ok {
		return err
	}
	if err := a.proj.DeleteLecture(ctx, c.ID, l.ID); err != nil {
		return err
	}
	a.saved()
	return nil
}
