package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/records"
	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

const userRecordID = "me"

func encode(id string, v any, updatedAt time.Time) (records.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return records.Record{}, fmt.Errorf("%w: failed to encode %s: %v", ErrStorage, id, err)
	}
	return records.Record{ID: id, Data: data, UpdatedAt: updatedAt}, nil
}

func (s *Store) SaveUser(ctx context.Context, u models.User) error {
	rec, err := encode(userRecordID, u, u.UpdatedAt)
	if err != nil {
		return err
	}
	return s.Records().Put(ctx, records.KindUser, rec)
}

// User returns the cached user or nil when none is stored.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	rec, err := s.Records().Get(ctx, records.KindUser, userRecordID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(rec.Data, &u); err != nil {
		return nil, fmt.Errorf("%w: failed to decode user: %v", ErrStorage, err)
	}
	return &u, nil
}

func (s *Store) SaveCourse(ctx context.Context, c models.Course) error {
	rec, err := encode(c.ID, c, c.UpdatedAt)
	if err != nil {
		return err
	}
	return s.Records().Put(ctx, records.KindCourses, rec)
}

// Course returns the stored course or common.ErrorNotFound.
func (s *Store) Course(ctx context.Context, id string) (models.Course, error) {
	rec, err := s.Records().Get(ctx, records.KindCourses, id)
	if err != nil {
		return models.Course{}, err
	}
	return decodeCourse(rec)
}

// Courses returns all stored courses ordered by creation time.
func (s *Store) Courses(ctx context.Context) ([]models.Course, error) {
	recs, err := s.Records().GetAll(ctx, records.KindCourses)
	if err != nil {
		return nil, err
	}

	out := make([]models.Course, 0, len(recs))
	for i := range recs {
		c, err := decodeCourse(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	SortCourses(out)
	return out, nil
}

// ReplaceCourses swaps the whole stored course list for courses.
func (s *Store) ReplaceCourses(ctx context.Context, courses []models.Course) error {
	if err := s.Records().Clear(ctx, records.KindCourses); err != nil {
		return err
	}
	for _, c := range courses {
		if err := s.SaveCourse(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.Records().Delete(ctx, records.KindCourses, id)
}

// ClearAll removes the cached user, courses and queued changes.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.Records().Clear(ctx, records.KindUser); err != nil {
		return err
	}
	if err := s.Records().Clear(ctx, records.KindCourses); err != nil {
		return err
	}
	return s.Pending().Clear(ctx)
}

func decodeCourse(rec *records.Record) (models.Course, error) {
	var c models.Course
	if err := json.Unmarshal(rec.Data, &c); err != nil {
		return models.Course{}, fmt.Errorf("%w: failed to decode course %s: %v", ErrStorage, rec.ID, err)
	}
	return c, nil
}

// SortCourses orders courses by CreatedAt, then ID.
func SortCourses(cs []models.Course) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
