package models

import (
	"encoding/json"
	"time"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Entity string

const (
	EntityCourse     Entity = "course"
	EntityLecture    Entity = "lecture"
	EntityAssignment Entity = "assignment"
)

// PendingChange is one queued mutation. ID grows monotonically with enqueue
// order; replay follows it strictly.
type PendingChange struct {
	ID         int64           `json:"id"`
	Op         Op              `json:"op"`
	Entity     Entity          `json:"entity"`
	CourseID   string          `json:"courseId"`
	TargetID   string          `json:"targetId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// NewPendingChange marshals payload into a change. A nil payload is allowed
// for deletes.
func NewPendingChange(op Op, entity Entity, courseID, targetID string, payload any) (*PendingChange, error) {
	pc := &PendingChange{Op: op, Entity: entity, CourseID: courseID, TargetID: targetID}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		pc.Payload = raw
	}
	return pc, nil
}
