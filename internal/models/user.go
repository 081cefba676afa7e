package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	FocusCourseID *string   `json:"focusCourseId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Credentials struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type Registration struct {
	Email           string `json:"email" validate:"contains=@"`
	Password        string `json:"password" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	DisplayName     string `json:"displayName,omitempty"`
}

// AuthResult is returned by both register and login.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type ProfilePatch struct {
	DisplayName string `json:"displayName" validate:"notblank"`
}

// FocusCourse sets or clears (nil CourseID) the user's focus course.
type FocusCourse struct {
	CourseID *string `json:"courseId"`
}

// Export is the full data dump served by GET /users/me/export.
type Export struct {
	User       User      `json:"user"`
	Courses    []Course  `json:"courses"`
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}
