package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/filex"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/dmitrijs2005/pocketschool/internal/netx"
)

// downloadToFile is a test seam for netx.DownloadToFile.
var downloadToFile = netx.DownloadToFile

func (a *App) Refresh(ctx context.Context, _ []string) error {
	if err := a.proj.Refresh(ctx); err != nil {
		return err
	}
	s := a.proj.Snapshot()
	source := "server"
	if !s.Online {
		source = "local copy"
	}
	fmt.Fprintf(a.out, "Loaded %d course(s) from the %s.\n", len(s.Courses), source)
	return nil
}

func (a *App) Pending(ctx context.Context, _ []string) error {
	changes, err := a.sync.PendingChanges(ctx)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(a.out, "Everything is synced.")
		return nil
	}
	fmt.Fprintf(a.out, "%d change(s) waiting for the server:\n", len(changes))
	for _, ch := range changes {
		fmt.Fprintf(a.out, "  %4d  %s  %-6s %-10s %s\n",
			ch.ID, ch.EnqueuedAt.Local().Format(time.DateTime), ch.Op, ch.Entity, shortID(ch.TargetID))
	}
	return nil
}

func (a *App) Status(ctx context.Context, _ []string) error {
	s := a.proj.Snapshot()

	conn := "offline"
	if s.Online {
		conn = "online"
	}
	fmt.Fprintf(a.out, "Server:   %s (%s)\n", a.config.APIBaseURL, conn)

	storage := a.config.DBPath
	if a.store.Degraded() {
		storage += " (unavailable, using memory)"
	}
	fmt.Fprintf(a.out, "Storage:  %s\n", storage)

	if s.User != nil {
		fmt.Fprintf(a.out, "User:     %s <%s>\n", s.User.DisplayName, s.User.Email)
	} else if a.isLoggedIn() {
		fmt.Fprintln(a.out, "User:     signed in")
	} else {
		fmt.Fprintln(a.out, "User:     not signed in")
	}
	fmt.Fprintf(a.out, "Pending:  %d\n", s.Pending)
	if s.Err != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", s.Err)
	}
	return nil
}

// Export saves the user's data as JSON. Online, the server's export is used
// (downloading the archived copy when the server offers one); offline, the
// local copy is written instead.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	path := fmt.Sprintf("pocketschool-export-%s.json", time.Now().Format(time.DateOnly))
	if len(args) == 1 {
		path = args[0]
	}

	if !a.monitor.IsOnline() {
		s := a.proj.Snapshot()
		if s.User == nil {
			return failf("No local data to export; connect and try again.")
		}
		exp := models.Export{User: *s.User, Courses: s.Courses, ExportedAt: time.Now().UTC(), Version: common.ExportVersion}
		if err := writeJSON(path, exp); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Offline: wrote the local copy to %s.\n", path)
		return nil
	}

	exp, meta, err := a.api.Export(ctx)
	if err != nil {
		return err
	}

	if meta.DownloadURL != "" {
		err := downloadToFile(ctx, meta.DownloadURL, path)
		if err == nil {
			fmt.Fprintf(a.out, "Exported %d course(s) to %s.\n", len(exp.Courses), path)
			return nil
		}
		a.logger.Warn(ctx, "failed to download archived export, writing response body", "error", err)
	}

	if err := writeJSON(path, exp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d course(s) to %s.\n", len(exp.Courses), path)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return failf("Could not write %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return failf("Could not write %s: %v", path, err)
	}
	return nil
}
