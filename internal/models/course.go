package models

import (
	"sort"
	"strings"
	"time"
)

type CourseStatus string

const (
	CourseActive    CourseStatus = "active"
	CourseCompleted CourseStatus = "completed"
	CourseParked    CourseStatus = "parked"
)

// Course is the aggregate root: it owns its lectures and assignments.
type Course struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Source      string       `json:"source"`
	Status      CourseStatus `json:"status"`
	Notes       string       `json:"notes"`
	Tags        []string     `json:"tags"`
	Lectures    []Lecture    `json:"lectures"`
	Assignments []Assignment `json:"assignments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy, so the copy's slices can be mutated freely.
func (c Course) Clone() Course {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	out.Lectures = make([]Lecture, len(c.Lectures))
	for i, l := range c.Lectures {
		out.Lectures[i] = l.Clone()
	}
	out.Assignments = make([]Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		out.Assignments[i] = a.Clone()
	}
	return out
}

// LectureIndex returns the index of the lecture with the given id or -1.
func (c *Course) LectureIndex(id string) int {
	for i := range c.Lectures {
		if c.Lectures[i].ID == id {
			return i
		}
	}
	return -1
}

// AssignmentIndex returns the index of the assignment with the given id or -1.
func (c *Course) AssignmentIndex(id string) int {
	for i := range c.Assignments {
		if c.Assignments[i].ID == id {
			return i
		}
	}
	return -1
}

// SortedLectures returns the lectures stably sorted by Order.
func (c Course) SortedLectures() []Lecture {
	out := append([]Lecture(nil), c.Lectures...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

type NewCourse struct {
	// ID is optional; clients set it so an offline-created course keeps its
	// identity once the server accepts it.
	ID          string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description"`
	Source      string   `json:"source" validate:"httpurl"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

// Build materialises a new active course.
func (n NewCourse) Build(id string, now time.Time) Course {
	tags := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return Course{
		ID:          id,
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		Source:      n.Source,
		Status:      CourseActive,
		Notes:       n.Notes,
		Tags:        tags,
		Lectures:    []Lecture{},
		Assignments: []Assignment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CoursePatch carries a partial update; nil fields are left unchanged.
type CoursePatch struct {
	Title       *string       `json:"title,omitempty" validate:"omitnil,notblank"`
	Description *string       `json:"description,omitempty"`
	Source      *string       `json:"source,omitempty" validate:"omitnil,httpurl"`
	Status      *CourseStatus `json:"status,omitempty" validate:"omitnil,oneof=active completed parked"`
	Notes       *string       `json:"notes,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
}

func (p CoursePatch) Apply(c *Course, now time.Time) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Source != nil {
		c.Source = *p.Source
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, (*p.Tags)...)
	}
	c.UpdatedAt = now
}
