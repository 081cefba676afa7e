package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// Archiver stores an export document and returns a URL it can be
// downloaded from.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte) (string, error)
}

type ExportService struct {
	users    *UserService
	courses  *CourseService
	archiver Archiver
	logger   logging.Logger
	now      func() time.Time
}

// NewExportService builds the service; archiver may be nil, in which case
// exports are never archived.
func NewExportService(u *UserService, c *CourseService, archiver Archiver, logger logging.Logger) *ExportService {
	return &ExportService{
		users:    u,
		courses:  c,
		archiver: archiver,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Export assembles the user's full data set. When an archiver is configured
// the document is archived too and the download URL returned; a failed
// archive is logged and the export is still served.
func (s *ExportService) Export(ctx context.Context, userID string) (*models.Export, string, error) {
	u, err := s.users.Me(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	list, err := s.courses.List(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	exp := &models.Export{
		User:       *u,
		Courses:    list,
		ExportedAt: now,
		Version:    common.ExportVersion,
	}

	if s.archiver == nil {
		return exp, "", nil
	}

	body, err := json.Marshal(exp)
	if err != nil {
		return nil, "", fmt.Errorf("error encoding export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, now.Format("20060102T150405Z"))
	url, err := s.archiver.Archive(ctx, key, body)
	if err != nil {
		s.logger.Warn(ctx, "export archive failed", "user", userID, "err", err)
		return exp, "", nil
	}
	return exp, url, nil
}
