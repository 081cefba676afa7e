package models

import (
	"strings"
	"time"
)

type LectureStatus string

const (
	LectureNotStarted LectureStatus = "not_started"
	LectureInProgress LectureStatus = "in_progress"
	LectureCompleted  LectureStatus = "completed"
)

type Lecture struct {
	ID              string        `json:"id"`
	CourseID        string        `json:"courseId"`
	Order           int           `json:"order"`
	Title           string        `json:"title"`
	VideoURL        string        `json:"videoUrl"`
	Status          LectureStatus `json:"status"`
	DurationMinutes *int          `json:"durationMinutes"`
	Note            string        `json:"note"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (l Lecture) Clone() Lecture {
	if l.DurationMinutes != nil {
		d := *l.DurationMinutes
		l.DurationMinutes = &d
	}
	return l
}

type NewLecture struct {
	ID              string        `json:"id,omitempty" validate:"omitempty,uuid"`
	Title           string        `json:"title" validate:"notblank"`
	VideoURL        string        `json:"videoUrl" validate:"httpurl"`
	Order           int           `json:"order,omitempty" validate:"omitempty,min=1"`
	Status          LectureStatus `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress completed"`
	DurationMinutes *int          `json:"durationMinutes,omitempty" validate:"omitnil,min=1"`
	Note            string        `json:"note,omitempty"`
}

// Build creates a lecture for course c. A zero Order defaults to the next
// position, a zero Status to not_started.
func (n NewLecture) Build(c Course, id string, now time.Time) Lecture {
	order := n.Order
	if order == 0 {
		order = NextLectureOrder(c)
	}
	status := n.Status
	if status == "" {
		status = LectureNotStarted
	}
	l := Lecture{
		ID:        id,
		CourseID:  c.ID,
		Order:     order,
		Title:     strings.TrimSpace(n.Title),
		VideoURL:  n.VideoURL,
		Status:    status,
		Note:      n.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if n.DurationMinutes != nil {
		d := *n.DurationMinutes
		l.DurationMinutes = &d
	}
	return l
}

type LecturePatch struct {
	Title           *string        `json:"title,omitempty" validate:"omitnil,notblank"`
	VideoURL        *string        `json:"videoUrl,omitempty" validate:"omitnil,httpurl"`
	Order           *int           `json:"order,omitempty" validate:"omitnil,min=1"`
	Status          *LectureStatus `json:"status,omitempty" validate:"omitnil,oneof=not_started in_progress completed"`
	DurationMinutes *int           `json:"durationMinutes,omitempty" validate:"omitnil,min=1"`
	Note            *string        `json:"note,omitempty"`
}

func (p LecturePatch) Apply(l *Lecture, now time.Time) {
	if p.Title != nil {
		l.Title = strings.TrimSpace(*p.Title)
	}
	if p.VideoURL != nil {
		l.VideoURL = *p.VideoURL
	}
	if p.Order != nil {
		l.Order = *p.Order
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.DurationMinutes != nil {
		d := *p.DurationMinutes
		l.DurationMinutes = &d
	}
	if p.Note != nil {
		l.Note = *p.Note
	}
	l.UpdatedAt = now
}

// TouchesStatus reports whether applying p may change the derived course status.
func (p LecturePatch) TouchesStatus() bool {
	return p.Status != nil
}
