package models

import (
	"strings"
	"time"
)

type AssignmentStatus string

const (
	AssignmentNotStarted AssignmentStatus = "not_started"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentSubmitted  AssignmentStatus = "submitted"
	AssignmentSkipped    AssignmentStatus = "skipped"
)

// AssignmentStatuses lists every status in display order.
var AssignmentStatuses = []AssignmentStatus{
	AssignmentNotStarted, AssignmentInProgress, AssignmentSubmitted, AssignmentSkipped,
}

type Assignment struct {
	ID        string           `json:"id"`
	CourseID  string           `json:"courseId"`
	Title     string           `json:"title"`
	Status    AssignmentStatus `json:"status"`
	DueDate   *string          `json:"dueDate"`
	Link      *string          `json:"link"`
	Note      string           `json:"note"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (a Assignment) Clone() Assignment {
	a.DueDate = cloneString(a.DueDate)
	a.Link = cloneString(a.Link)
	return a
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type NewAssignment struct {
	ID      string           `json:"id,omitempty" validate:"omitempty,uuid"`
	Title   string           `json:"title" validate:"notblank"`
	Status  AssignmentStatus `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress submitted skipped"`
	DueDate *string          `json:"dueDate,omitempty" validate:"omitnil,optdate"`
	Link    *string          `json:"link,omitempty" validate:"omitnil,opturl"`
	Note    string           `json:"note,omitempty"`
}

func (n NewAssignment) Build(courseID, id string, now time.Time) Assignment {
	status := n.Status
	if status == "" {
		status = AssignmentNotStarted
	}
	return Assignment{
		ID:        id,
		CourseID:  courseID,
		Title:     strings.TrimSpace(n.Title),
		Status:    status,
		DueDate:   cloneString(n.DueDate),
		Link:      cloneString(n.Link),
		Note:      n.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type AssignmentPatch struct {
	Title   *string           `json:"title,omitempty" validate:"omitnil,notblank"`
	Status  *AssignmentStatus `json:"status,omitempty" validate:"omitnil,oneof=not_started in_progress submitted skipped"`
	DueDate *string           `json:"dueDate,omitempty" validate:"omitnil,optdate"`
	Link    *string           `json:"link,omitempty" validate:"omitnil,opturl"`
	Note    *string           `json:"note,omitempty"`
}

func (p AssignmentPatch) Apply(a *Assignment, now time.Time) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.DueDate != nil {
		a.DueDate = cloneString(p.DueDate)
	}
	if p.Link != nil {
		a.Link = cloneString(p.Link)
	}
	if p.Note != nil {
		a.Note = *p.Note
	}
	a.UpdatedAt = now
}
