package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
)

type fakeUserRepository struct {
	repository.UserRepository
	users   []*models.User
	cutoffs []time.Time
	cleared int64
	err     error
}

func (f *fakeUserRepository) ClearJoinIPsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	cleared := f.cleared
	for _, u := range f.users {
		if u.JoinedFromIP != nil && !u.JoinedOn.After(cutoff) {
			u.JoinedFromIP = nil
			cleared++
		}
	}
	return cleared, nil
}

type fakeAuditTrailRepository struct {
	rows    []*models.AuditTrail
	calls   int
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakeAuditTrailRepository) Create(ctx context.Context, trail *models.AuditTrail) error {
	trail.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, trail)
	return nil
}

func (f *fakeAuditTrailRepository) ListForUser(ctx context.Context, userID, afterID int64, limit int) ([]*models.AuditTrail, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.AuditTrail
	for _, row := range f.rows {
		if row.UserID == userID && row.ID > afterID {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAuditTrailRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	deleted := f.deleted
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.CreatedAt.After(cutoff) {
			kept = append(kept, row)
			continue
		}
		deleted++
	}
	f.rows = kept
	return deleted, nil
}

type fakeNameChangeRepository struct {
	changes []*models.NameChange
	synced  map[int64]string
	err     error
}

func (f *fakeNameChangeRepository) Create(ctx context.Context, change *models.NameChange) error {
	change.ID = int64(len(f.changes) + 1)
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeNameChangeRepository) ListForUser(ctx context.Context, userID int64) ([]*models.NameChange, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.NameChange
	for _, c := range f.changes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeNameChangeRepository) UpdateChangedByUsername(ctx context.Context, changedByID int64, username string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.synced == nil {
		f.synced = map[int64]string{}
	}
	f.synced[changedByID] = username

	var n int64
	for _, c := range f.changes {
		if c.ChangedByID != nil && *c.ChangedByID == changedByID {
			c.ChangedByUsername = username
			n++
		}
	}
	return n, nil
}

type fakeAvatarRepository struct {
	avatars []*models.Avatar
}

func (f *fakeAvatarRepository) Create(ctx context.Context, avatar *models.Avatar) error {
	f.avatars = append(f.avatars, avatar)
	return nil
}

func (f *fakeAvatarRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Avatar, error) {
	var out []*models.Avatar
	for _, a := range f.avatars {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// recordingArchiver captures writes in the order they happen.
type recordingArchiver struct {
	writes      []string
	data        map[string]any
	failOnWrite string
}

func newRecordingArchiver() *recordingArchiver {
	return &recordingArchiver{data: map[string]any{}}
}

func (a *recordingArchiver) record(entry string, data any) error {
	if a.failOnWrite != "" && entry == a.failOnWrite {
		return errors.New("write failed: " + entry)
	}
	a.writes = append(a.writes, entry)
	a.data[entry] = data
	return nil
}

func (a *recordingArchiver) WriteDataFile(name string, data any) (string, error) {
	return name, a.record("data:"+name, data)
}

func (a *recordingArchiver) CreateCollection(name string) (archive.Collection, error) {
	if err := a.record("collection:"+name, nil); err != nil {
		return nil, err
	}
	return &recordingCollection{archiver: a, name: name}, nil
}

type recordingCollection struct {
	archiver *recordingArchiver
	name     string
}

func (c *recordingCollection) WriteDataFile(name string, data any) (string, error) {
	return name, c.archiver.record(c.name+"/data:"+name, data)
}

func (c *recordingCollection) WriteModelFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return path, c.archiver.record(c.name+"/model:"+path, nil)
}
