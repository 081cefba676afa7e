package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// saved tells the user whether a change reached the server or is queued.
func (a *App) saved() {
	if a.proj.Snapshot().Online {
		fmt.Fprintln(a.out, "Saved.")
		return
	}
	fmt.Fprintln(a.out, "Saved locally; it will sync when the server is reachable.")
}

func (a *App) Courses(ctx context.Context, _ []string) error {
	s := a.proj.Snapshot()
	var focus *string
	if s.User != nil {
		focus = s.User.FocusCourseID
	}
	renderCourseList(a.out, s.Courses, focus)
	return nil
}

func (a *App) Course(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	renderCourse(a.out, c)
	return nil
}

func (a *App) AddCourse(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	source, err := getSimpleText(a.reader, "Source URL (playlist or course page)", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	c, err := a.proj.AddCourse(ctx, models.NewCourse{
		Title:       title,
		Source:      source,
		Description: desc,
		Tags:        splitTags(tags),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %q.\n", c.Title)
	a.saved()
	return nil
}

// EditCourse prompts for each editable field; an empty answer keeps the
// current value.
func (a *App) EditCourse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}

	var patch models.CoursePatch
	if patch.Title, err = a.promptKeep("Title", c.Title); err != nil {
		return err
	}
	if patch.Source, err = a.promptKeep("Source URL", c.Source); err != nil {
		return err
	}
	if patch.Description, err = a.promptKeep("Description", c.Description); err != nil {
		return err
	}
	tags, err := a.promptKeep("Tags", strings.Join(c.Tags, ", "))
	if err != nil {
		return err
	}
	if tags != nil {
		t := splitTags(*tags)
		patch.Tags = &t
	}
	status, err := a.promptKeep("Status ("+aliasKeys(courseStatusAliases)+")", string(c.Status))
	if err != nil {
		return err
	}
	if status != nil {
		s, ok := courseStatusAliases[*status]
		if !ok {
			return failf("Unknown status %q; use one of %s.", *status, aliasKeys(courseStatusAliases))
		}
		patch.Status = &s
	}

	if patch == (models.CoursePatch{}) {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	if err := a.proj.UpdateCourse(ctx, c.ID, patch); err != nil {
		return err
	}
	a.saved()
	return nil
}

func (a *App) CourseNotes(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	if c.Notes != "" {
		fmt.Fprintf(a.out, "Current notes:\n%s\n", c.Notes)
	}
	notes, err := getMultiline(a.reader, "New notes", a.out)
	if err != nil {
		return err
	}
	if err := a.proj.UpdateCourseNotes(ctx, c.ID, notes); err != nil {
		return err
	}
	a.saved()
	return nil
}

func (a *App) RemoveCourse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.resolveCourse(args[0])
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Delete %q with %d lectures and %d assignments?", c.Title, len(c.Lectures), len(c.Assignments)))
	if err != nil || !ok {
		return err
	}
	if err := a.proj.DeleteCourse(ctx, c.ID); err != nil {
		return err
	}
	a.saved()
	return nil
}

// Next shows the lecture to watch next for one course, or for the focus
// course and every other active course.
func (a *App) Next(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		c, err := a.resolveCourse(args[0])
		if err != nil {
			return err
		}
		a.printNext(c)
		return nil
	}

	s := a.proj.Snapshot()
	printed := 0
	if s.User != nil && s.User.FocusCourseID != nil {
		if c, ok := s.Course(*s.User.FocusCourseID); ok {
			a.printNext(c)
			printed++
		}
	}
	for _, c := range s.Courses {
		if c.Status != models.CourseActive || (s.User != nil && s.User.FocusCourseID != nil && *s.User.FocusCourseID == c.ID) {
			continue
		}
		a.printNext(c)
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(a.out, "Nothing to watch. Add a course or a lecture first.")
	}
	return nil
}

func (a *App) printNext(c models.Course) {
	l, ok := models.NextLecture(c)
	if !ok {
		fmt.Fprintf(a.out, "%s: all caught up\n", c.Title)
		return
	}
	fmt.Fprintf(a.out, "%s: #%d %s %s\n  %s\n", c.Title, l.Order, lectureMark(l.Status), l.Title, l.VideoURL)
}

// promptKeep returns nil when the user keeps current.
func (a *App) promptKeep(label, current string) (*string, error) {
	v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, current), a.out)
	if err != nil {
		return nil, err
	}
	if v == "" || v == current {
		return nil, nil
	}
	return &v, nil
}

func (a *App) confirm(question string) (bool, error) {
	v, err := getSimpleText(a.reader, question+" (yes/no)", a.out)
	if err != nil {
		return false, err
	}
	if strings.EqualFold(v, "yes") || strings.EqualFold(v, "y") {
		return true, nil
	}
	fmt.Fprintln(a.out, "Cancelled.")
	return false, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
