package service

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

func newArchiveConfig(t *testing.T) archive.Config {
	root := t.TempDir()
	return archive.Config{
		WorkingDir: filepath.Join(root, "tmp"),
		OutputDir:  filepath.Join(root, "out"),
		MediaRoot:  filepath.Join(root, "media"),
	}
}

func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestArchiveService_ArchiveUser(t *testing.T) {
	users := NewMockUserRepository()
	user := models.NewUser("Bob", "bob@example.com", "")
	require.NoError(t, users.Create(context.Background(), user))

	cfg := newArchiveConfig(t)
	publisher := &MockPublisher{
		forward: func(ctx context.Context, name string, payload any) error {
			p := payload.(events.ArchiveUserDataPayload)
			if _, err := p.Archiver.WriteDataFile("details", archive.Fields{{Key: "Username", Value: p.User.Username}}); err != nil {
				return err
			}
			_, err := p.Archiver.CreateCollection("audit_trail")
			return err
		},
	}
	svc := NewArchiveService(users, publisher, cfg, nil)

	path, err := svc.ArchiveUser(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, cfg.OutputDir, filepath.Dir(path))
	assert.Regexp(t, `^bob-\d{4}-\d{2}-\d{2}-\d{6}\.zip$`, filepath.Base(path))
	assert.Equal(t, []string{"audit_trail/", "details.yaml"}, zipEntries(t, path))

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.ArchiveUserData, publisher.published[0].name)

	leftovers, err := os.ReadDir(cfg.WorkingDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestArchiveService_ArchiveUser_HandlerError(t *testing.T) {
	users := NewMockUserRepository()
	user := models.NewUser("bob", "bob@example.com", "")
	require.NoError(t, users.Create(context.Background(), user))

	cfg := newArchiveConfig(t)
	handlerErr := errors.New("disk full")
	publisher := &MockPublisher{
		forward: func(ctx context.Context, name string, payload any) error {
			p := payload.(events.ArchiveUserDataPayload)
			_, _ = p.Archiver.WriteDataFile("details", "partial")
			return handlerErr
		},
	}
	svc := NewArchiveService(users, publisher, cfg, nil)

	path, err := svc.ArchiveUser(context.Background(), user.ID)

	assert.Same(t, handlerErr, err)
	assert.Empty(t, path)

	leftovers, err := os.ReadDir(cfg.WorkingDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	_, err = os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestArchiveService_ArchiveUser_UnknownUser(t *testing.T) {
	publisher := &MockPublisher{}
	svc := NewArchiveService(NewMockUserRepository(), publisher, newArchiveConfig(t), nil)

	_, err := svc.ArchiveUser(context.Background(), 7)

	assert.True(t, utils.IsNotFoundError(err))
	assert.Empty(t, publisher.published)
}

func TestArchiveService_RemoveArchive_LeavesNothingBehind(t *testing.T) {
	users := NewMockUserRepository()
	user := models.NewUser("bob", "bob@example.com", "")
	require.NoError(t, users.Create(context.Background(), user))

	cfg := newArchiveConfig(t)
	svc := NewArchiveService(users, &MockPublisher{}, cfg, nil)

	for i := 0; i < 3; i++ {
		path, err := svc.ArchiveUser(context.Background(), user.ID)
		require.NoError(t, err)
		require.FileExists(t, path)
		require.NoError(t, svc.RemoveArchive(path))
	}

	remaining, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestArchiveService_PruneArchives(t *testing.T) {
	cfg := newArchiveConfig(t)
	cfg.MaxAge = 24 * time.Hour
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o750))

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	write := func(name string, modified time.Time) string {
		path := filepath.Join(cfg.OutputDir, name)
		require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))
		require.NoError(t, os.Chtimes(path, modified, modified))
		return path
	}
	expired := write("bob-2024-05-30-120000.zip", now.Add(-48*time.Hour))
	fresh := write("bob-2024-06-01-110000.zip", now.Add(-time.Hour))

	svc := NewArchiveService(NewMockUserRepository(), &MockPublisher{}, cfg, nil)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.PruneArchives(context.Background()))

	assert.NoFileExists(t, expired)
	assert.FileExists(t, fresh)
}

func TestArchiveService_PruneArchives_Disabled(t *testing.T) {
	cfg := newArchiveConfig(t)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o750))
	path := filepath.Join(cfg.OutputDir, "bob.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))
	old := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	svc := NewArchiveService(NewMockUserRepository(), &MockPublisher{}, cfg, nil)

	require.NoError(t, svc.PruneArchives(context.Background()))
	assert.FileExists(t, path)
}
