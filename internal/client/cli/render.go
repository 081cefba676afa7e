package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

const barWidth = 20

func progressBar(p models.Progress) string {
	filled := int(p.Ratio*barWidth + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

func lectureMark(s models.LectureStatus) string {
	switch s {
	case models.LectureCompleted:
		return "[x]"
	case models.LectureInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func renderCourseList(w io.Writer, courses []models.Course, focusID *string) {
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses yet. Use 'addcourse' to create one.")
		return
	}
	for i, c := range courses {
		p := models.CourseProgress(c)
		pin := " "
		if focusID != nil && *focusID == c.ID {
			pin = "*"
		}
		fmt.Fprintf(w, "%s%2d. %-32s %-9s %s %d/%d  %s\n",
			pin, i+1, truncate(c.Title, 32), c.Status, progressBar(p), p.Completed, p.Total, shortID(c.ID))
	}
}

func renderCourse(w io.Writer, c models.Course) {
	p := models.CourseProgress(c)
	fmt.Fprintf(w, "%s (%s)\n", c.Title, c.Status)
	fmt.Fprintf(w, "  id:     %s\n", c.ID)
	fmt.Fprintf(w, "  source: %s\n", c.Source)
	if len(c.Tags) > 0 {
		fmt.Fprintf(w, "  tags:   %s\n", strings.Join(c.Tags, ", "))
	}
	if c.Description != "" {
		fmt.Fprintf(w, "  about:  %s\n", c.Description)
	}
	fmt.Fprintf(w, "  progress %s %d/%d completed, %d in progress\n", progressBar(p), p.Completed, p.Total, p.InProgress)

	if c.Notes != "" {
		fmt.Fprintln(w, "Notes:")
		for _, line := range strings.Split(c.Notes, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}

	fmt.Fprintln(w, "Lectures:")
	if len(c.Lectures) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, l := range c.SortedLectures() {
		fmt.Fprintf(w, "  %2d. %s %s", i+1, lectureMark(l.Status), l.Title)
		if l.DurationMinutes != nil {
			fmt.Fprintf(w, " (%dm)", *l.DurationMinutes)
		}
		fmt.Fprintln(w)
		if l.Note != "" {
			fmt.Fprintf(w, "      note: %s\n", firstLine(l.Note))
		}
	}

	fmt.Fprintln(w, "Assignments:")
	if len(c.Assignments) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, as := range c.Assignments {
		fmt.Fprintf(w, "  %2d. %-11s %s", i+1, as.Status, as.Title)
		if as.DueDate != nil {
			fmt.Fprintf(w, " due %s", *as.DueDate)
		}
		fmt.Fprintln(w)
	}
	if len(c.Assignments) > 0 {
		counts := models.CountAssignmentsByStatus(c)
		parts := make([]string, 0, len(models.AssignmentStatuses))
		for _, s := range models.AssignmentStatuses {
			parts = append(parts, fmt.Sprintf("%s %d", s, counts[s]))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " | "))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
