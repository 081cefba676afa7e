package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/client/services"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type command struct {
	name  string
	usage string
	help  string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// cliError is printed verbatim by the REPL.
type cliError struct{ msg string }

func (e cliError) Error() string { return e.msg }

func failf(format string, args ...any) error {
	return cliError{msg: fmt.Sprintf(format, args...)}
}

func (a *App) commands() []command {
	return []command{
		{name: "register", usage: "register", help: "create an account", run: a.Register},
		{name: "login", usage: "login", help: "sign in", run: a.Login},
		{name: "logout", usage: "logout", help: "sign out and forget local data", auth: true, run: a.Logout},
		{name: "me", usage: "me", help: "show your profile", auth: true, run: a.Me},
		{name: "name", usage: "name [display name]", help: "change your display name", auth: true, run: a.SetName},
		{name: "focus", usage: "focus <course>|none", help: "pin a course", auth: true, run: a.Focus},
		{name: "courses", usage: "courses", help: "list courses", auth: true, run: a.Courses},
		{name: "course", usage: "course <course>", help: "show a course", auth: true, run: a.Course},
		{name: "addcourse", usage: "addcourse", help: "add a course", auth: true, run: a.AddCourse},
		{name: "editcourse", usage: "editcourse <course>", help: "edit title, source, description, status", auth: true, run: a.EditCourse},
		{name: "notes", usage: "notes <course>", help: "replace course notes", auth: true, run: a.CourseNotes},
		{name: "rmcourse", usage: "rmcourse <course>", help: "delete a course", auth: true, run: a.RemoveCourse},
		{name: "addlecture", usage: "addlecture <course>", help: "add a lecture", auth: true, run: a.AddLecture},
		{name: "lecture", usage: "lecture <course> <lecture> <not_started|in_progress|completed|note>", help: "set lecture status or note", auth: true, run: a.Lecture},
		{name: "rmlecture", usage: "rmlecture <course> <lecture>", help: "delete a lecture", auth: true, run: a.RemoveLecture},
		{name: "addassignment", usage: "addassignment <course>", help: "add an assignment", auth: true, run: a.AddAssignment},
		{name: "assignment", usage: "assignment <course> <assignment> <not_started|in_progress|submitted|skipped|note>", help: "set assignment status or note", auth: true, run: a.Assignment},
		{name: "rmassignment", usage: "rmassignment <course> <assignment>", help: "delete an assignment", auth: true, run: a.RemoveAssignment},
		{name: "next", usage: "next [course]", help: "what to watch next", auth: true, run: a.Next},
		{name: "refresh", usage: "refresh", help: "reload everything", auth: true, run: a.Refresh},
		{name: "pending", usage: "pending", help: "list changes waiting to sync", auth: true, run: a.Pending},
		{name: "status", usage: "status", help: "connection and storage status", run: a.Status},
		{name: "export", usage: "export [file]", help: "save all your data as JSON", auth: true, run: a.Export},
	}
}

// Exec runs the named command.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	for _, c := range a.commands() {
		if c.name != name {
			continue
		}
		if c.auth && !a.isLoggedIn() {
			return services.ErrNotSignedIn
		}
		err := c.run(ctx, args)
		if errors.Is(err, errUsage) {
			return usageError{usage: c.usage}
		}
		return err
	}
	return errUnknownCommand
}

// errUsage is returned by commands given the wrong arguments; Exec turns it
// into the command's usage line.
var errUsage = errors.New("bad arguments")

func (a *App) Help() string {
	loggedIn := a.isLoggedIn()

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range a.commands() {
		if c.auth != loggedIn && c.name != "status" {
			continue
		}
		if loggedIn && (c.name == "login" || c.name == "register") {
			continue
		}
		fmt.Fprintf(&b, "  %-28s %s\n", c.usage, c.help)
	}
	b.WriteString("  exit                         leave the program")
	return b.String()
}

func (a *App) resolveCourse(arg string) (models.Course, error) {
	courses := a.proj.Snapshot().Courses
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	i, err := pick(arg, ids, "course")
	if err != nil {
		return models.Course{}, err
	}
	return courses[i], nil
}

func resolveLecture(c models.Course, arg string) (models.Lecture, error) {
	lectures := c.SortedLectures()
	ids := make([]string, len(lectures))
	for i, l := range lectures {
		ids[i] = l.ID
	}
	i, err := pick(arg, ids, "lecture")
	if err != nil {
		return models.Lecture{}, err
	}
	return lectures[i], nil
}

func resolveAssignment(c models.Course, arg string) (models.Assignment, error) {
	ids := make([]string, len(c.Assignments))
	for i, as := range c.Assignments {
		ids[i] = as.ID
	}
	i, err := pick(arg, ids, "assignment")
	if err != nil {
		return models.Assignment{}, err
	}
	return c.Assignments[i], nil
}

// pick resolves a 1-based position or an id prefix.
func pick(arg string, ids []string, what string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(ids) {
			return 0, failf("No %s #%d (have %d).", what, n, len(ids))
		}
		return n - 1, nil
	}

	match := -1
	for i, id := range ids {
		if strings.HasPrefix(id, arg) {
			if match >= 0 {
				return 0, failf("%q matches more than one %s.", arg, what)
			}
			match = i
		}
	}
	if match < 0 {
		return 0, failf("No %s matches %q.", what, arg)
	}
	return match, nil
}

var lectureStatusAliases = map[string]models.LectureStatus{
	"not_started": models.LectureNotStarted,
	"todo":        models.LectureNotStarted,
	"in_progress": models.LectureInProgress,
	"started":     models.LectureInProgress,
	"completed":   models.LectureCompleted,
	"done":        models.LectureCompleted,
}

var assignmentStatusAliases = map[string]models.AssignmentStatus{
	"not_started": models.AssignmentNotStarted,
	"todo":        models.AssignmentNotStarted,
	"in_progress": models.AssignmentInProgress,
	"started":     models.AssignmentInProgress,
	"submitted":   models.AssignmentSubmitted,
	"done":        models.AssignmentSubmitted,
	"skipped":     models.AssignmentSkipped,
}

var courseStatusAliases = map[string]models.CourseStatus{
	"active":    models.CourseActive,
	"completed": models.CourseCompleted,
	"parked":    models.CourseParked,
}

func aliasKeys[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
