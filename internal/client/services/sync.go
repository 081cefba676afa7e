package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/connectivity"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// Result carries the authoritative record returned by the server. At most
// one field is set; deletes leave all nil.
type Result struct {
	Course     *models.Course
	Lecture    *models.Lecture
	Assignment *models.Assignment
}

// SyncService sends mutations to the API, queues them while offline and
// replays the queue when the connection returns.
type SyncService struct {
	api     client.Client
	store   *store.Store
	monitor *connectivity.Monitor
	logger  logging.Logger

	replayMu sync.Mutex
}

func NewSyncService(api client.Client, st *store.Store, monitor *connectivity.Monitor, logger logging.Logger) *SyncService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SyncService{api: api, store: st, monitor: monitor, logger: logger}
}

// Dispatch sends change right away when online. When offline, or when the
// server cannot be reached, the change is queued and ErrQueued is returned.
// While older changes are still queued a new one goes behind them, and the
// queue is replayed in order.
func (s *SyncService) Dispatch(ctx context.Context, change *models.PendingChange) (*Result, error) {
	if !s.monitor.IsOnline() {
		return nil, s.enqueue(ctx, change)
	}

	waiting, err := s.store.Pending().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending changes: %w", err)
	}
	if waiting > 0 {
		if err := s.enqueue(ctx, change); !errors.Is(err, ErrQueued) {
			return nil, err
		}
		if _, err := s.Replay(ctx); err != nil {
			s.logger.Warn(ctx, "queue still blocked, change kept pending", "entity", change.Entity, "op", change.Op, "error", err)
		}
		return nil, ErrQueued
	}

	res, err := s.send(ctx, change)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			s.logger.Warn(ctx, "server unreachable, queueing change", "entity", change.Entity, "op", change.Op, "error", err)
			s.monitor.SetOnline(false)
			return nil, s.enqueue(ctx, change)
		}
		return nil, err
	}
	return res, nil
}

func (s *SyncService) enqueue(ctx context.Context, change *models.PendingChange) error {
	if err := s.store.Pending().Enqueue(ctx, change); err != nil {
		return fmt.Errorf("failed to queue change: %w", err)
	}
	return ErrQueued
}

// Pending returns the number of queued changes.
func (s *SyncService) Pending(ctx context.Context) (int, error) {
	return s.store.Pending().Count(ctx)
}

// PendingChanges lists the queue in replay order.
func (s *SyncService) PendingChanges(ctx context.Context) ([]models.PendingChange, error) {
	return s.store.Pending().ListAll(ctx)
}

// Replay sends queued changes oldest first. It stops at the first failure and
// leaves that change and everything after it queued. Concurrent calls are
// serialized. It returns the number of changes applied.
func (s *SyncService) Replay(ctx context.Context) (int, error) {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	applied := 0
	for {
		queue, err := s.store.Pending().ListAll(ctx)
		if err != nil {
			return applied, fmt.Errorf("failed to read pending changes: %w", err)
		}
		if len(queue) == 0 {
			break
		}
		change := queue[0]

		res, err := s.send(ctx, &change)
		switch {
		case err == nil:
			if err := s.reconcile(ctx, &change, res); err != nil {
				s.logger.Warn(ctx, "failed to reconcile replayed change", "id", change.ID, "error", err)
			}
		case change.Op != models.OpCreate && client.NotFound(err):
			// the entity is gone on the server; last write wins
			s.logger.Info(ctx, "replayed change targets a missing entity, dropping", "id", change.ID)
		default:
			if errors.Is(err, client.ErrUnavailable) {
				s.monitor.SetOnline(false)
			}
			s.logger.Warn(ctx, "replay halted", "id", change.ID, "applied", applied, "error", err)
			return applied, fmt.Errorf("replay halted at change %d (%s %s): %w", change.ID, change.Op, change.Entity, err)
		}

		if err := s.store.Pending().Remove(ctx, change.ID); err != nil {
			return applied, fmt.Errorf("failed to remove replayed change: %w", err)
		}
		applied++
	}

	if applied > 0 {
		s.logger.Info(ctx, "pending changes replayed", "applied", applied)
	}
	return applied, nil
}

// ReplayOnReconnect runs Replay on every offline-to-online transition and
// passes the outcome to done (which may be nil).
func (s *SyncService) ReplayOnReconnect(ctx context.Context, done func(applied int, err error)) (unsubscribe func()) {
	return s.monitor.Subscribe(func() {
		n, err := s.Replay(ctx)
		if done != nil {
			done(n, err)
		}
	}, nil)
}

func decodePayload[T any](change *models.PendingChange) (T, error) {
	var v T
	if len(change.Payload) == 0 {
		return v, fmt.Errorf("change %d has no payload", change.ID)
	}
	if err := json.Unmarshal(change.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode payload of change %d: %w", change.ID, err)
	}
	return v, nil
}

func (s *SyncService) send(ctx context.Context, ch *models.PendingChange) (*Result, error) {
	switch ch.Entity {
	case models.EntityCourse:
		return s.sendCourse(ctx, ch)
	case models.EntityLecture:
		return s.sendLecture(ctx, ch)
	case models.EntityAssignment:
		return s.sendAssignment(ctx, ch)
	}
	return nil, fmt.Errorf("unknown entity %q", ch.Entity)
}

func (s *SyncService) sendCourse(ctx context.Context, ch *models.PendingChange) (*Result, error) {
	switch ch.Op {
	case models.OpCreate:
		p, err := decodePayload[models.NewCourse](ch)
		if err != nil {
			return nil, err
		}
		c, err := s.api.CreateCourse(ctx, p)
		if err != nil {
			return nil, err
		}
		return &Result{Course: c}, nil
	case models.OpUpdate:
		p, err := decodePayload[models.CoursePatch](ch)
		if err != nil {
			return nil, err
		}
		c, err := s.api.UpdateCourse(ctx, ch.TargetID, p)
		if err != nil {
			return nil, err
		}
		return &Result{Course: c}, nil
	case models.OpDelete:
		return &Result{}, s.api.DeleteCourse(ctx, ch.TargetID)
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}

func (s *SyncService) sendLecture(ctx context.Context, ch *models.PendingChange) (*Result, error) {
	switch ch.Op {
	case models.OpCreate:
		p, err := decodePayload[models.NewLecture](ch)
		if err != nil {
			return nil, err
		}
		l, err := s.api.CreateLecture(ctx, ch.CourseID, p)
		if err != nil {
			return nil, err
		}
		return &Result{Lecture: l}, nil
	case models.OpUpdate:
		p, err := decodePayload[models.LecturePatch](ch)
		if err != nil {
			return nil, err
		}
		l, err := s.api.UpdateLecture(ctx, ch.CourseID, ch.TargetID, p)
		if err != nil {
			return nil, err
		}
		return &Result{Lecture: l}, nil
	case models.OpDelete:
		return &Result{}, s.api.DeleteLecture(ctx, ch.CourseID, ch.TargetID)
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}

func (s *SyncService) sendAssignment(ctx context.Context, ch *models.PendingChange) (*Result, error) {
	switch ch.Op {
	case models.OpCreate:
		p, err := decodePayload[models.NewAssignment](ch)
		if err != nil {
			return nil, err
		}
		a, err := s.api.CreateAssignment(ctx, ch.CourseID, p)
		if err != nil {
			return nil, err
		}
		return &Result{Assignment: a}, nil
	case models.OpUpdate:
		p, err := decodePayload[models.AssignmentPatch](ch)
		if err != nil {
			return nil, err
		}
		a, err := s.api.UpdateAssignment(ctx, ch.CourseID, ch.TargetID, p)
		if err != nil {
			return nil, err
		}
		return &Result{Assignment: a}, nil
	case models.OpDelete:
		return &Result{}, s.api.DeleteAssignment(ctx, ch.CourseID, ch.TargetID)
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}

// reconcile writes the authoritative result of a replayed change into the
// local store. Ids assigned by the server replace local ones, including in
// changes still waiting in the queue.
func (s *SyncService) reconcile(ctx context.Context, ch *models.PendingChange, res *Result) error {
	if res == nil {
		return nil
	}

	if res.Course != nil {
		if res.Course.ID != ch.TargetID {
			if err := s.renameTarget(ctx, ch.TargetID, res.Course.ID); err != nil {
				return err
			}
			if err := s.store.DeleteCourse(ctx, ch.TargetID); err != nil {
				return err
			}
		}
		return s.store.SaveCourse(ctx, *res.Course)
	}

	if ch.Op == models.OpDelete && ch.Entity == models.EntityCourse {
		return s.store.DeleteCourse(ctx, ch.TargetID)
	}

	c, err := s.store.Course(ctx, ch.CourseID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	switch {
	case res.Lecture != nil:
		if res.Lecture.ID != ch.TargetID {
			if err := s.renameTarget(ctx, ch.TargetID, res.Lecture.ID); err != nil {
				return err
			}
		}
		if i := c.LectureIndex(ch.TargetID); i >= 0 {
			c.Lectures[i] = *res.Lecture
		} else {
			c.Lectures = append(c.Lectures, *res.Lecture)
		}
	case res.Assignment != nil:
		if res.Assignment.ID != ch.TargetID {
			if err := s.renameTarget(ctx, ch.TargetID, res.Assignment.ID); err != nil {
				return err
			}
		}
		if i := c.AssignmentIndex(ch.TargetID); i >= 0 {
			c.Assignments[i] = *res.Assignment
		} else {
			c.Assignments = append(c.Assignments, *res.Assignment)
		}
	case ch.Entity == models.EntityLecture:
		if i := c.LectureIndex(ch.TargetID); i >= 0 {
			c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
		}
	case ch.Entity == models.EntityAssignment:
		if i := c.AssignmentIndex(ch.TargetID); i >= 0 {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
		}
	}

	c.Recompute()
	return s.store.SaveCourse(ctx, c)
}

func (s *SyncService) renameTarget(ctx context.Context, from, to string) error {
	s.logger.Info(ctx, "server assigned a new id", "from", from, "to", to)
	return s.store.Pending().Rewrite(ctx, from, to)
}
