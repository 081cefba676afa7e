package models

// Progress summarises lecture completion for a course.
type Progress struct {
	Completed  int
	InProgress int
	Total      int
	Ratio      float64
}

// CourseProgress counts lectures by status. Ratio is Completed/Total and 0
// for a course without lectures.
func CourseProgress(c Course) Progress {
	p := Progress{Total: len(c.Lectures)}
	for _, l := range c.Lectures {
		switch l.Status {
		case LectureCompleted:
			p.Completed++
		case LectureInProgress:
			p.InProgress++
		}
	}
	denom := p.Total
	if denom == 0 {
		denom = 1
	}
	p.Ratio = float64(p.Completed) / float64(denom)
	return p
}

// NextLecture picks what to watch next: the lowest-order in-progress lecture,
// otherwise the lowest-order not-started one. ok is false when every lecture
// is completed or there are none.
func NextLecture(c Course) (Lecture, bool) {
	sorted := c.SortedLectures()
	for _, l := range sorted {
		if l.Status == LectureInProgress {
			return l, true
		}
	}
	for _, l := range sorted {
		if l.Status == LectureNotStarted {
			return l, true
		}
	}
	return Lecture{}, false
}

// NextLectureOrder is the default order for a lecture appended to c: the
// count plus one, or one past the highest order when that is already taken.
func NextLectureOrder(c Course) int {
	next := len(c.Lectures) + 1
	highest := 0
	taken := false
	for _, l := range c.Lectures {
		if l.Order == next {
			taken = true
		}
		highest = max(highest, l.Order)
	}
	if taken {
		return highest + 1
	}
	return next
}

// CheckLectureOrder rejects an order already used by another lecture of c.
// lectureID is the lecture being written and may be empty for a new one.
func CheckLectureOrder(c Course, lectureID string, order int) error {
	for _, l := range c.Lectures {
		if l.Order == order && l.ID != lectureID {
			return &ValidationError{Fields: map[string]string{"order": "already used by another lecture"}}
		}
	}
	return nil
}

// DeriveStatus applies the completion rule: a course whose lectures are all
// completed (and which has at least one) is completed; a completed course that
// no longer qualifies reverts to active. Parked is never overridden.
func DeriveStatus(c Course) CourseStatus {
	if c.Status == CourseParked {
		return CourseParked
	}
	if allLecturesCompleted(c) {
		return CourseCompleted
	}
	if c.Status == CourseCompleted {
		return CourseActive
	}
	if c.Status == "" {
		return CourseActive
	}
	return c.Status
}

// Recompute sets c.Status from DeriveStatus and reports whether it changed.
func (c *Course) Recompute() bool {
	next := DeriveStatus(*c)
	if next == c.Status {
		return false
	}
	c.Status = next
	return true
}

func allLecturesCompleted(c Course) bool {
	if len(c.Lectures) == 0 {
		return false
	}
	for _, l := range c.Lectures {
		if l.Status != LectureCompleted {
			return false
		}
	}
	return true
}

// CountAssignmentsByStatus always returns an entry for every status.
func CountAssignmentsByStatus(c Course) map[AssignmentStatus]int {
	counts := make(map[AssignmentStatus]int, len(AssignmentStatuses))
	for _, s := range AssignmentStatuses {
		counts[s] = 0
	}
	for _, a := range c.Assignments {
		counts[a.Status]++
	}
	return counts
}
