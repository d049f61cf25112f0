package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct {
	users  map[int64]*models.User
	nextID int64
	err    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) find(match func(*models.User) bool) *models.User {
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied
		}
	}
	return nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u := m.find(func(u *models.User) bool { return strings.EqualFold(u.Username, username) }); u != nil {
		return u, nil
	}
	return nil, utils.NewNotFoundError("User", username)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u := m.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) }); u != nil {
		return u, nil
	}
	return nil, utils.NewNotFoundError("User", email)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.Username = username
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.find(func(u *models.User) bool { return strings.EqualFold(u.Username, username) }) != nil, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) }) != nil, nil
}

func (m *MockUserRepository) ClearJoinIPsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.JoinedFromIP != nil && !u.JoinedOn.After(cutoff) {
			u.JoinedFromIP = nil
			n++
		}
	}
	return n, nil
}

// MockBanRepository is an in-memory BanRepository.
type MockBanRepository struct {
	bans        []*models.Ban
	err         error
	expiredNow  time.Time
	lookupTypes []models.BanCheckType
}

func (m *MockBanRepository) Create(ctx context.Context, ban *models.Ban) (*models.Ban, error) {
	if m.err != nil {
		return nil, m.err
	}
	ban.ID = int64(len(m.bans) + 1)
	m.bans = append(m.bans, ban)
	return ban, nil
}

func (m *MockBanRepository) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	for _, b := range m.bans {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, utils.NewNotFoundError("Ban", id)
}

func (m *MockBanRepository) List(ctx context.Context, offset, limit int) ([]*models.Ban, int, error) {
	sorted := m.newestFirst()
	if offset >= len(sorted) {
		return nil, len(sorted), nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], len(sorted), nil
}

func (m *MockBanRepository) GetCheckedByTypes(ctx context.Context, types []models.BanCheckType) ([]*models.Ban, error) {
	m.lookupTypes = types
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Ban
	for _, b := range m.newestFirst() {
		if !b.IsChecked {
			continue
		}
		for _, t := range types {
			if b.CheckType == t {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (m *MockBanRepository) Delete(ctx context.Context, id int64) error {
	for i, b := range m.bans {
		if b.ID == id {
			m.bans = append(m.bans[:i], m.bans[i+1:]...)
			return nil
		}
	}
	return utils.NewNotFoundError("Ban", id)
}

func (m *MockBanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.expiredNow = now
	var kept []*models.Ban
	var n int64
	for _, b := range m.bans {
		if b.IsExpired(now) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	m.bans = kept
	return n, nil
}

func (m *MockBanRepository) newestFirst() []*models.Ban {
	sorted := append([]*models.Ban(nil), m.bans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	return sorted
}

func (m *MockBanRepository) add(checkType models.BanCheckType, value, message string) *models.Ban {
	ban, _ := m.Create(context.Background(), models.NewBan(checkType, value, message, "", nil))
	return ban
}

// MockNameChangeRepository is an in-memory NameChangeRepository.
type MockNameChangeRepository struct {
	changes []*models.NameChange
	err     error
}

func (m *MockNameChangeRepository) Create(ctx context.Context, change *models.NameChange) error {
	if m.err != nil {
		return m.err
	}
	change.ID = int64(len(m.changes) + 1)
	m.changes = append(m.changes, change)
	return nil
}

func (m *MockNameChangeRepository) ListForUser(ctx context.Context, userID int64) ([]*models.NameChange, error) {
	var out []*models.NameChange
	for _, c := range m.changes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockNameChangeRepository) UpdateChangedByUsername(ctx context.Context, changedByID int64, username string) (int64, error) {
	var n int64
	for _, c := range m.changes {
		if c.ChangedByID != nil && *c.ChangedByID == changedByID {
			c.ChangedByUsername = username
			n++
		}
	}
	return n, nil
}

// MockAuditTrailRepository is an in-memory AuditTrailRepository.
type MockAuditTrailRepository struct {
	trails []*models.AuditTrail
}

func (m *MockAuditTrailRepository) Create(ctx context.Context, trail *models.AuditTrail) error {
	trail.ID = int64(len(m.trails) + 1)
	m.trails = append(m.trails, trail)
	return nil
}

func (m *MockAuditTrailRepository) ListForUser(ctx context.Context, userID, afterID int64, limit int) ([]*models.AuditTrail, error) {
	var out []*models.AuditTrail
	for _, t := range m.trails {
		if t.UserID == userID && t.ID > afterID && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockAuditTrailRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// MockTransactor runs fn directly and restores the in-memory user and name
// change repositories when it fails, the way a rollback would.
type MockTransactor struct {
	users      *MockUserRepository
	changes    *MockNameChangeRepository
	began      int
	rolledBack int
}

func (m *MockTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.began++

	users := make(map[int64]models.User, len(m.users.users))
	for id, u := range m.users.users {
		users[id] = *u
	}
	changes := make([]models.NameChange, len(m.changes.changes))
	for i, c := range m.changes.changes {
		changes[i] = *c
	}

	if err := fn(ctx); err != nil {
		m.rolledBack++

		m.users.users = make(map[int64]*models.User, len(users))
		for id, u := range users {
			restored := u
			m.users.users[id] = &restored
		}
		m.changes.changes = m.changes.changes[:0]
		for _, c := range changes {
			restored := c
			m.changes.changes = append(m.changes.changes, &restored)
		}
		return err
	}
	return nil
}

// publishedEvent is one call to MockPublisher.Publish.
type publishedEvent struct {
	name    string
	payload any
}

// MockPublisher records published events and optionally forwards them.
type MockPublisher struct {
	published []publishedEvent
	err       error
	forward   func(ctx context.Context, name string, payload any) error
}

func (m *MockPublisher) Publish(ctx context.Context, name string, payload any) error {
	m.published = append(m.published, publishedEvent{name: name, payload: payload})
	if m.forward != nil {
		if err := m.forward(ctx, name, payload); err != nil {
			return err
		}
	}
	return m.err
}
