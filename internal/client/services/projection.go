package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/connectivity"
	"github.com/dmitrijs2005/pocketschool/internal/client/state"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Projection is the state the CLI renders. Mutations are applied locally
// first, then sent (or queued) through the SyncService; failures roll the
// affected course back to its previous value.
//
// The lock is held only while reducing, never across I/O.
type Projection struct {
	mu sync.Mutex
	st state.State

	api     client.Client
	store   *store.Store
	sync    *SyncService
	auth    *AuthService
	monitor *connectivity.Monitor
	logger  logging.Logger

	now   func() time.Time
	newID func() string
}

type Deps struct {
	API     client.Client
	Store   *store.Store
	Sync    *SyncService
	Auth    *AuthService
	Monitor *connectivity.Monitor
	Logger  logging.Logger
}

func NewProjection(d Deps) *Projection {
	logger := d.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Projection{
		api:     d.API,
		store:   d.Store,
		sync:    d.Sync,
		auth:    d.Auth,
		monitor: d.Monitor,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	p.st.Online = d.Monitor.IsOnline()
	return p
}

// Start follows connectivity: going offline is reflected in the state, going
// online replays the queue and reloads. The returned func stops following.
func (p *Projection) Start(ctx context.Context) (stop func()) {
	unsubState := p.monitor.Subscribe(
		func() { p.dispatch(state.SetOnline{Online: true}) },
		func() { p.dispatch(state.SetOnline{Online: false}) },
	)
	unsubReplay := p.sync.ReplayOnReconnect(ctx, func(applied int, err error) {
		if p.auth.Authenticated() {
			_ = p.Refresh(ctx)
		}
		p.updatePending(ctx)
		if err != nil {
			p.dispatch(state.SetError{Message: Message(err)})
		}
	})
	return func() {
		unsubReplay()
		unsubState()
	}
}

// Snapshot returns a deep copy of the current state.
func (p *Projection) Snapshot() state.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.Clone()
}

// Reset empties the projection, keeping the connectivity flag.
func (p *Projection) Reset() {
	p.dispatch(state.Reset{})
}

func (p *Projection) dispatch(a state.Action) state.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.st = state.Reduce(p.st, a)
	return p.st
}

func (p *Projection) course(id string) (models.Course, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.Course(id)
}

func (p *Projection) fail(err error) error {
	p.dispatch(state.SetError{Message: Message(err)})
	return err
}

func (p *Projection) updatePending(ctx context.Context) {
	n, err := p.sync.Pending(ctx)
	if err != nil {
		p.logger.Warn(ctx, "failed to count pending changes", "error", err)
		return
	}
	p.dispatch(state.SetPending{Count: n})
}

// writeThrough mirrors the projection's copy of a course into the store.
func (p *Projection) writeThrough(ctx context.Context, courseID string) {
	var err error
	if c, ok := p.course(courseID); ok {
		err = p.store.SaveCourse(ctx, c)
	} else {
		err = p.store.DeleteCourse(ctx, courseID)
	}
	if err != nil {
		p.logger.Warn(ctx, "failed to write course to local store", "course", courseID, "error", err)
	}
}

type mutation struct {
	op         string
	label      string
	courseID   string
	change     *models.PendingChange
	optimistic state.Action
	// confirm maps the server's answer to the action that installs it; nil
	// when there is nothing to install.
	confirm func(*Result) state.Action
}

// run applies m optimistically and resolves it against the server.
func (p *Projection) run(ctx context.Context, m mutation) error {
	prev, existed := p.course(m.courseID)

	p.dispatch(m.optimistic)
	p.writeThrough(ctx, m.courseID)

	p.dispatch(state.SetLoading{Active: true, Op: m.op, Label: m.label})
	res, err := p.sync.Dispatch(ctx, m.change)
	p.dispatch(state.SetLoading{Active: false})

	switch {
	case errors.Is(err, ErrQueued):
		p.updatePending(ctx)
		return nil
	case err != nil:
		if existed {
			p.dispatch(state.UpsertCourse{Course: prev})
		} else {
			p.dispatch(state.RemoveCourse{ID: m.courseID})
		}
		p.writeThrough(ctx, m.courseID)
		p.logger.Warn(ctx, "mutation rolled back", "op", m.op, "course", m.courseID, "error", err)
		return p.fail(err)
	}

	if m.confirm == nil || res == nil {
		return nil
	}
	// the target may have been removed while the request was in flight
	if !p.present(m) {
		return nil
	}
	if a := m.confirm(res); a != nil {
		p.dispatch(a)
		p.writeThrough(ctx, m.courseID)
	}
	return nil
}

// present reports whether the entity m writes is still in the projection.
func (p *Projection) present(m mutation) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ok bool
	switch m.change.Entity {
	case models.EntityLecture:
		_, ok = p.st.Lecture(m.courseID, m.change.TargetID)
	case models.EntityAssignment:
		_, ok = p.st.Assignment(m.courseID, m.change.TargetID)
	default:
		_, ok = p.st.Course(m.courseID)
	}
	return ok
}

// Refresh reloads user and courses: from the API when online, otherwise from
// the local store. An auth failure signs the user out.
func (p *Projection) Refresh(ctx context.Context) error {
	p.dispatch(state.ClearError{})
	if !p.auth.Authenticated() {
		return p.fail(ErrNotSignedIn)
	}

	p.dispatch(state.SetLoading{Active: true, Op: "refresh", Label: "Loading courses"})
	defer p.dispatch(state.SetLoading{Active: false})

	if p.monitor.IsOnline() {
		err := p.refreshRemote(ctx)
		switch {
		case err == nil:
			p.updatePending(ctx)
			return nil
		case errors.Is(err, client.ErrUnauthorized):
			p.logger.Info(ctx, "session rejected by server, signing out")
			if lerr := p.Logout(ctx); lerr != nil {
				p.logger.Warn(ctx, "logout failed", "error", lerr)
			}
			return p.fail(err)
		case errors.Is(err, client.ErrUnavailable):
			p.monitor.SetOnline(false)
		default:
			return p.fail(err)
		}
	}

	if err := p.refreshLocal(ctx); err != nil {
		return p.fail(err)
	}
	p.updatePending(ctx)
	return nil
}

func (p *Projection) refreshRemote(ctx context.Context) error {
	var (
		user    *models.User
		courses []models.Course
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = p.api.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = p.api.ListCourses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	queue, err := p.sync.PendingChanges(ctx)
	if err != nil {
		p.logger.Warn(ctx, "failed to read pending changes", "error", err)
	} else if len(queue) > 0 {
		var skipped []error
		courses, skipped = overlayPending(courses, queue)
		for _, e := range skipped {
			p.logger.Warn(ctx, "pending change not shown", "error", e)
		}
	}

	store.SortCourses(courses)
	p.dispatch(state.SetData{User: user, Courses: courses})

	if err := p.auth.remember(ctx, *user); err != nil {
		p.logger.Warn(ctx, "failed to update session user", "error", err)
	}
	if err := p.store.ReplaceCourses(ctx, courses); err != nil {
		p.logger.Warn(ctx, "failed to cache courses", "error", err)
	}
	return nil
}

func (p *Projection) refreshLocal(ctx context.Context) error {
	user, err := p.store.User(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cached user: %w", err)
	}
	if user == nil {
		user = p.auth.CurrentUser()
	}
	courses, err := p.store.Courses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cached courses: %w", err)
	}
	p.dispatch(state.SetData{User: user, Courses: courses})
	return nil
}

// Logout signs out and forgets everything cached locally.
func (p *Projection) Logout(ctx context.Context) error {
	err := p.auth.Logout(ctx)
	p.Reset()
	p.updatePending(ctx)
	return err
}

func (p *Projection) currentUser() (*models.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st.User == nil {
		return nil, false
	}
	u := *p.st.User
	return &u, true
}

// updateUser covers profile changes, which need the server: they are not
// queued while offline.
func (p *Projection) updateUser(ctx context.Context, op string, optimistic func(u *models.User), send func() (*models.User, error)) error {
	p.dispatch(state.ClearError{})
	prev, ok := p.currentUser()
	if !ok {
		return p.fail(ErrNotSignedIn)
	}
	if !p.monitor.IsOnline() {
		return p.fail(fmt.Errorf("%s: %w", op, client.ErrUnavailable))
	}

	next := *prev
	optimistic(&next)
	p.dispatch(state.SetUser{User: &next})

	p.dispatch(state.SetLoading{Active: true, Op: op})
	u, err := send()
	p.dispatch(state.SetLoading{Active: false})
	if err != nil {
		p.dispatch(state.SetUser{User: prev})
		if errors.Is(err, client.ErrUnavailable) {
			p.monitor.SetOnline(false)
		}
		return p.fail(err)
	}

	p.dispatch(state.SetUser{User: u})
	return p.auth.remember(ctx, *u)
}

func (p *Projection) SetDisplayName(ctx context.Context, name string) error {
	patch := models.ProfilePatch{DisplayName: name}
	if err := models.Validate(patch); err != nil {
		return p.fail(err)
	}
	return p.updateUser(ctx, "set_display_name",
		func(u *models.User) { u.DisplayName = name },
		func() (*models.User, error) { return p.api.UpdateProfile(ctx, patch) })
}

// SetFocusCourse pins a course; nil clears the focus.
func (p *Projection) SetFocusCourse(ctx context.Context, courseID *string) error {
	if courseID != nil {
		if _, ok := p.course(*courseID); !ok {
			return p.fail(fmt.Errorf("course %s: %w", *courseID, common.ErrorNotFound))
		}
	}
	return p.updateUser(ctx, "set_focus_course",
		func(u *models.User) { u.FocusCourseID = courseID },
		func() (*models.User, error) {
			return p.api.SetFocusCourse(ctx, models.FocusCourse{CourseID: courseID})
		})
}

func (p *Projection) requireCourse(id string) (models.Course, error) {
	c, ok := p.course(id)
	if !ok {
		return models.Course{}, fmt.Errorf("course %s: %w", id, common.ErrorNotFound)
	}
	return c, nil
}

func (p *Projection) AddCourse(ctx context.Context, nc models.NewCourse) (models.Course, error) {
	p.dispatch(state.ClearError{})
	if err := models.Validate(nc); err != nil {
		return models.Course{}, p.fail(err)
	}
	if nc.ID == "" {
		nc.ID = p.newID()
	}
	c := nc.Build(nc.ID, p.now())

	change, err := models.NewPendingChange(models.OpCreate, models.EntityCourse, c.ID, c.ID, nc)
	if err != nil {
		return models.Course{}, p.fail(err)
	}
	err = p.run(ctx, mutation{
		op: "add_course", label: "Adding " + c.Title, courseID: c.ID, change: change,
		optimistic: state.UpsertCourse{Course: c},
		confirm:    upsertCourse,
	})
	if err != nil {
		return models.Course{}, err
	}
	out, _ := p.course(c.ID)
	return out, nil
}

func upsertCourse(r *Result) state.Action {
	if r.Course == nil {
		return nil
	}
	return state.UpsertCourse{Course: *r.Course}
}

func (p *Projection) UpdateCourse(ctx context.Context, id string, patch models.CoursePatch) error {
	p.dispatch(state.ClearError{})
	if err := models.Validate(patch); err != nil {
		return p.fail(err)
	}
	c, err := p.requireCourse(id)
	if err != nil {
		return p.fail(err)
	}
	patch.Apply(&c, p.now())

	change, err := models.NewPendingChange(models.OpUpdate, models.EntityCourse, id, id, patch)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "update_course", label: "Saving " + c.Title, courseID: id, change: change,
		optimistic: state.UpsertCourse{Course: c},
		confirm:    upsertCourse,
	})
}

func (p *Projection) UpdateCourseNotes(ctx context.Context, id, notes string) error {
	return p.UpdateCourse(ctx, id, models.CoursePatch{Notes: &notes})
}

func (p *Projection) DeleteCourse(ctx context.Context, id string) error {
	p.dispatch(state.ClearError{})
	c, err := p.requireCourse(id)
	if err != nil {
		return p.fail(err)
	}
	change, err := models.NewPendingChange(models.OpDelete, models.EntityCourse, id, id, nil)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "delete_course", label: "Deleting " + c.Title, courseID: id, change: change,
		optimistic: state.RemoveCourse{ID: id},
	})
}

func (p *Projection) AddLecture(ctx context.Context, courseID string, nl models.NewLecture) (models.Lecture, error) {
	p.dispatch(state.ClearError{})
	if err := models.Validate(nl); err != nil {
		return models.Lecture{}, p.fail(err)
	}
	c, err := p.requireCourse(courseID)
	if err != nil {
		return models.Lecture{}, p.fail(err)
	}
	if nl.ID == "" {
		nl.ID = p.newID()
	}
	if nl.Order != 0 {
		if err := models.CheckLectureOrder(c, nl.ID, nl.Order); err != nil {
			return models.Lecture{}, p.fail(err)
		}
	}
	l := nl.Build(c, nl.ID, p.now())
	// send the resolved defaults so the server stores what we show
	nl.Order, nl.Status = l.Order, l.Status

	change, err := models.NewPendingChange(models.OpCreate, models.EntityLecture, courseID, l.ID, nl)
	if err != nil {
		return models.Lecture{}, p.fail(err)
	}
	err = p.run(ctx, mutation{
		op: "add_lecture", label: "Adding " + l.Title, courseID: courseID, change: change,
		optimistic: state.UpsertLecture{CourseID: courseID, Lecture: l},
		confirm:    upsertLecture(courseID),
	})
	if err != nil {
		return models.Lecture{}, err
	}
	p.mu.Lock()
	out, _ := p.st.Lecture(courseID, l.ID)
	p.mu.Unlock()
	return out, nil
}

func upsertLecture(courseID string) func(*Result) state.Action {
	return func(r *Result) state.Action {
		if r.Lecture == nil {
			return nil
		}
		return state.UpsertLecture{CourseID: courseID, Lecture: *r.Lecture}
	}
}

func (p *Projection) UpdateLecture(ctx context.Context, courseID, lectureID string, patch models.LecturePatch) error {
	p.dispatch(state.ClearError{})
	if err := models.Validate(patch); err != nil {
		return p.fail(err)
	}
	c, err := p.requireCourse(courseID)
	if err != nil {
		return p.fail(err)
	}
	i := c.LectureIndex(lectureID)
	if i < 0 {
		return p.fail(fmt.Errorf("lecture %s: %w", lectureID, common.ErrorNotFound))
	}
	if patch.Order != nil {
		if err := models.CheckLectureOrder(c, lectureID, *patch.Order); err != nil {
			return p.fail(err)
		}
	}
	l := c.Lectures[i]
	patch.Apply(&l, p.now())

	change, err := models.NewPendingChange(models.OpUpdate, models.EntityLecture, courseID, lectureID, patch)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "update_lecture", label: "Saving " + l.Title, courseID: courseID, change: change,
		optimistic: state.UpsertLecture{CourseID: courseID, Lecture: l},
		confirm:    upsertLecture(courseID),
	})
}

func (p *Projection) UpdateLectureStatus(ctx context.Context, courseID, lectureID string, status models.LectureStatus) error {
	return p.UpdateLecture(ctx, courseID, lectureID, models.LecturePatch{Status: &status})
}

func (p *Projection) UpdateLectureNote(ctx context.Context, courseID, lectureID, note string) error {
	return p.UpdateLecture(ctx, courseID, lectureID, models.LecturePatch{Note: &note})
}

func (p *Projection) DeleteLecture(ctx context.Context, courseID, lectureID string) error {
	p.dispatch(state.ClearError{})
	c, err := p.requireCourse(courseID)
	if err != nil {
		return p.fail(err)
	}
	if c.LectureIndex(lectureID) < 0 {
		return p.fail(fmt.Errorf("lecture %s: %w", lectureID, common.ErrorNotFound))
	}
	change, err := models.NewPendingChange(models.OpDelete, models.EntityLecture, courseID, lectureID, nil)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "delete_lecture", label: "Deleting lecture", courseID: courseID, change: change,
		optimistic: state.RemoveLecture{CourseID: courseID, LectureID: lectureID},
	})
}

func (p *Projection) AddAssignment(ctx context.Context, courseID string, na models.NewAssignment) (models.Assignment, error) {
	p.dispatch(state.ClearError{})
	if err := models.Validate(na); err != nil {
		return models.Assignment{}, p.fail(err)
	}
	if _, err := p.requireCourse(courseID); err != nil {
		return models.Assignment{}, p.fail(err)
	}
	if na.ID == "" {
		na.ID = p.newID()
	}
	a := na.Build(courseID, na.ID, p.now())
	na.Status = a.Status

	change, err := models.NewPendingChange(models.OpCreate, models.EntityAssignment, courseID, a.ID, na)
	if err != nil {
		return models.Assignment{}, p.fail(err)
	}
	err = p.run(ctx, mutation{
		op: "add_assignment", label: "Adding " + a.Title, courseID: courseID, change: change,
		optimistic: state.UpsertAssignment{CourseID: courseID, Assignment: a},
		confirm:    upsertAssignment(courseID),
	})
	if err != nil {
		return models.Assignment{}, err
	}
	p.mu.Lock()
	out, _ := p.st.Assignment(courseID, a.ID)
	p.mu.Unlock()
	return out, nil
}

func upsertAssignment(courseID string) func(*Result) state.Action {
	return func(r *Result) state.Action {
		if r.Assignment == nil {
			return nil
		}
		return state.UpsertAssignment{CourseID: courseID, Assignment: *r.Assignment}
	}
}

func (p *Projection) UpdateAssignment(ctx context.Context, courseID, assignmentID string, patch models.AssignmentPatch) error {
	p.dispatch(state.ClearError{})
	if err := models.Validate(patch); err != nil {
		return p.fail(err)
	}
	c, err := p.requireCourse(courseID)
	if err != nil {
		return p.fail(err)
	}
	i := c.AssignmentIndex(assignmentID)
	if i < 0 {
		return p.fail(fmt.Errorf("assignment %s: %w", assignmentID, common.ErrorNotFound))
	}
	a := c.Assignments[i]
	patch.Apply(&a, p.now())

	change, err := models.NewPendingChange(models.OpUpdate, models.EntityAssignment, courseID, assignmentID, patch)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "update_assignment", label: "Saving " + a.Title, courseID: courseID, change: change,
		optimistic: state.UpsertAssignment{CourseID: courseID, Assignment: a},
		confirm:    upsertAssignment(courseID),
	})
}

func (p *Projection) UpdateAssignmentStatus(ctx context.Context, courseID, assignmentID string, status models.AssignmentStatus) error {
	return p.UpdateAssignment(ctx, courseID, assignmentID, models.AssignmentPatch{Status: &status})
}

func (p *Projection) UpdateAssignmentNote(ctx context.Context, courseID, assignmentID, note string) error {
	return p.UpdateAssignment(ctx, courseID, assignmentID, models.AssignmentPatch{Note: &note})
}

func (p *Projection) DeleteAssignment(ctx context.Context, courseID, assignmentID string) error {
	p.dispatch(state.ClearError{})
	c, err := p.requireCourse(courseID)
	if err != nil {
		return p.fail(err)
	}
	if c.AssignmentIndex(assignmentID) < 0 {
		return p.fail(fmt.Errorf("assignment %s: %w", assignmentID, common.ErrorNotFound))
	}
	change, err := models.NewPendingChange(models.OpDelete, models.EntityAssignment, courseID, assignmentID, nil)
	if err != nil {
		return p.fail(err)
	}
	return p.run(ctx, mutation{
		op: "delete_assignment", label: "Deleting assignment", courseID: courseID, change: change,
		optimistic: state.RemoveAssignment{CourseID: courseID, AssignmentID: assignmentID},
	})
}
