package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// TokenSource supplies the bearer token of the current session, or "".
type TokenSource interface {
	Token() string
}

// HTTPClient implements Client over the JSON REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the API at baseURL, e.g.
// "http://localhost:8080". The versioned prefix is appended unless present.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	base := u.String()
	if !strings.HasSuffix(base, common.APIBasePath) {
		base += common.APIBasePath
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

// BaseURL returns the versioned API root.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	return resp, nil
}

func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (Result[T], error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return Result[T]{}, err
	}
	defer resp.Body.Close()
	return decode[T](resp)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectNoContent(resp)
}

func one[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (*T, error) {
	res, err := call[T](ctx, c, method, path, body)
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func coursePath(id string) string {
	return "/courses/" + url.PathEscape(id)
}

func (c *HTTPClient) Register(ctx context.Context, r models.Registration) (*models.AuthResult, error) {
	return one[models.AuthResult](ctx, c, http.MethodPost, "/auth/register", r)
}

func (c *HTTPClient) Login(ctx context.Context, cr models.Credentials) (*models.AuthResult, error) {
	return one[models.AuthResult](ctx, c, http.MethodPost, "/auth/login", cr)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	return one[models.User](ctx, c, http.MethodGet, "/users/me", nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.ProfilePatch) (*models.User, error) {
	return one[models.User](ctx, c, http.MethodPatch, "/users/me", p)
}

func (c *HTTPClient) SetFocusCourse(ctx context.Context, f models.FocusCourse) (*models.User, error) {
	return one[models.User](ctx, c, http.MethodPatch, "/users/me/focus-course", f)
}

func (c *HTTPClient) Export(ctx context.Context) (*models.Export, Meta, error) {
	res, err := call[models.Export](ctx, c, http.MethodGet, "/users/me/export", nil)
	if err != nil {
		return nil, Meta{}, err
	}
	return &res.Data, res.Meta, nil
}

func (c *HTTPClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	res, err := call[[]models.Course](ctx, c, http.MethodGet, "/courses", nil)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *HTTPClient) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return one[models.Course](ctx, c, http.MethodGet, coursePath(id), nil)
}

func (c *HTTPClient) CreateCourse(ctx context.Context, nc models.NewCourse) (*models.Course, error) {
	return one[models.Course](ctx, c, http.MethodPost, "/courses", nc)
}

func (c *HTTPClient) UpdateCourse(ctx context.Context, id string, p models.CoursePatch) (*models.Course, error) {
	return one[models.Course](ctx, c, http.MethodPatch, coursePath(id), p)
}

func (c *HTTPClient) DeleteCourse(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, coursePath(id), nil)
}

func (c *HTTPClient) CreateLecture(ctx context.Context, courseID string, l models.NewLecture) (*models.Lecture, error) {
	return one[models.Lecture](ctx, c, http.MethodPost, coursePath(courseID)+"/lectures", l)
}

func (c *HTTPClient) UpdateLecture(ctx context.Context, courseID, lectureID string, p models.LecturePatch) (*models.Lecture, error) {
	return one[models.Lecture](ctx, c, http.MethodPatch, coursePath(courseID)+"/lectures/"+url.PathEscape(lectureID), p)
}

func (c *HTTPClient) DeleteLecture(ctx context.Context, courseID, lectureID string) error {
	return c.send(ctx, http.MethodDelete, coursePath(courseID)+"/lectures/"+url.PathEscape(lectureID), nil)
}

func (c *HTTPClient) CreateAssignment(ctx context.Context, courseID string, a models.NewAssignment) (*models.Assignment, error) {
	return one[models.Assignment](ctx, c, http.MethodPost, coursePath(courseID)+"/assignments", a)
}

func (c *HTTPClient) UpdateAssignment(ctx context.Context, courseID, assignmentID string, p models.AssignmentPatch) (*models.Assignment, error) {
	return one[models.Assignment](ctx, c, http.MethodPatch, coursePath(courseID)+"/assignments/"+url.PathEscape(assignmentID), p)
}

func (c *HTTPClient) DeleteAssignment(ctx context.Context, courseID, assignmentID string) error {
	return c.send(ctx, http.MethodDelete, coursePath(courseID)+"/assignments/"+url.PathEscape(assignmentID), nil)
}

// Ping hits the unauthenticated health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := call[map[string]string](ctx, c, http.MethodGet, "/health", nil)
	return err
}
