package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/google/uuid"
)

var serverNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory stand-in for the REST API. Errors can be injected
// per method name.
type fakeAPI struct {
	client.Client

	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	user    models.User
	token   string
	courses map[string]models.Course
	// newIDs makes the server ignore client supplied ids on create.
	newIDs bool
	// onCall runs inside every call, before the result is produced.
	onCall func(method string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		fail:    map[string]error{},
		user:    models.User{ID: "u1", Email: "ann@example.com", DisplayName: "ann"},
		token:   "tok",
		courses: map[string]models.Course{},
	}
}

func serverErr(status int, msg string) error {
	return &client.ServerError{Status: status, Code: "server_error", Message: msg}
}

func notFound() error {
	return &client.ServerError{Status: http.StatusNotFound, Code: "course_not_found", Message: "Course not found"}
}

func (f *fakeAPI) setFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, method)
		return
	}
	f.fail[method] = err
}

func (f *fakeAPI) record(method, arg string) error {
	f.calls = append(f.calls, method+":"+arg)
	if f.onCall != nil {
		f.onCall(method)
	}
	return f.fail[method]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) id(clientID string) string {
	if clientID == "" || f.newIDs {
		return uuid.NewString()
	}
	return clientID
}

func (f *fakeAPI) Register(ctx context.Context, r models.Registration) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Register", r.Email); err != nil {
		return nil, err
	}
	return &models.AuthResult{User: f.user, Token: f.token}, nil
}

func (f *fakeAPI) Login(ctx context.Context, c models.Credentials) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Login", c.Email); err != nil {
		return nil, err
	}
	return &models.AuthResult{User: f.user, Token: f.token}, nil
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Me", ""); err != nil {
		return nil, err
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, p models.ProfilePatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateProfile", p.DisplayName); err != nil {
		return nil, err
	}
	f.user.DisplayName = p.DisplayName
	u := f.user
	return &u, nil
}

func (f *fakeAPI) SetFocusCourse(ctx context.Context, fc models.FocusCourse) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetFocusCourse", fmt.Sprint(fc.CourseID != nil)); err != nil {
		return nil, err
	}
	f.user.FocusCourseID = fc.CourseID
	u := f.user
	return &u, nil
}

func (f *fakeAPI) ListCourses(ctx context.Context) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListCourses", ""); err != nil {
		return nil, err
	}
	out := make([]models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (f *fakeAPI) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCourse", id); err != nil {
		return nil, err
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, notFound()
	}
	c = c.Clone()
	return &c, nil
}

func (f *fakeAPI) CreateCourse(ctx context.Context, nc models.NewCourse) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateCourse", nc.Title); err != nil {
		return nil, err
	}
	c := nc.Build(f.id(nc.ID), serverNow)
	f.courses[c.ID] = c
	c = c.Clone()
	return &c, nil
}

func (f *fakeAPI) UpdateCourse(ctx context.Context, id string, p models.CoursePatch) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateCourse", id); err != nil {
		return nil, err
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, notFound()
	}
	p.Apply(&c, serverNow)
	f.courses[id] = c
	c = c.Clone()
	return &c, nil
}

func (f *fakeAPI) DeleteCourse(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteCourse", id); err != nil {
		return err
	}
	if _, ok := f.courses[id]; !ok {
		return notFound()
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeAPI) CreateLecture(ctx context.Context, courseID string, nl models.NewLecture) (*models.Lecture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateLecture", courseID+"/"+nl.Title); err != nil {
		return nil, err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, notFound()
	}
	l := nl.Build(c, f.id(nl.ID), serverNow)
	c.Lectures = append(c.Lectures, l)
	c.Recompute()
	f.courses[courseID] = c
	return &l, nil
}

func (f *fakeAPI) UpdateLecture(ctx context.Context, courseID, lectureID string, p models.LecturePatch) (*models.Lecture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateLecture", lectureID); err != nil {
		return nil, err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, notFound()
	}
	i := c.LectureIndex(lectureID)
	if i < 0 {
		return nil, notFound()
	}
	p.Apply(&c.Lectures[i], serverNow)
	c.Recompute()
	f.courses[courseID] = c
	l := c.Lectures[i]
	return &l, nil
}

func (f *fakeAPI) DeleteLecture(ctx context.Context, courseID, lectureID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteLecture", lectureID); err != nil {
		return err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return notFound()
	}
	i := c.LectureIndex(lectureID)
	if i < 0 {
		return notFound()
	}
	c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
	c.Recompute()
	f.courses[courseID] = c
	return nil
}

func (f *fakeAPI) CreateAssignment(ctx context.Context, courseID string, na models.NewAssignment) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateAssignment", courseID+"/"+na.Title); err != nil {
		return nil, err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, notFound()
	}
	a := na.Build(courseID, f.id(na.ID), serverNow)
	c.Assignments = append(c.Assignments, a)
	f.courses[courseID] = c
	return &a, nil
}

func (f *fakeAPI) UpdateAssignment(ctx context.Context, courseID, assignmentID string, p models.AssignmentPatch) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateAssignment", assignmentID); err != nil {
		return nil, err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, notFound()
	}
	i := c.AssignmentIndex(assignmentID)
	if i < 0 {
		return nil, notFound()
	}
	p.Apply(&c.Assignments[i], serverNow)
	f.courses[courseID] = c
	a := c.Assignments[i]
	return &a, nil
}

func (f *fakeAPI) DeleteAssignment(ctx context.Context, courseID, assignmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteAssignment", assignmentID); err != nil {
		return err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return notFound()
	}
	i := c.AssignmentIndex(assignmentID)
	if i < 0 {
		return notFound()
	}
	c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
	f.courses[courseID] = c
	return nil
}

func (f *fakeAPI) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail["Ping"]
}
