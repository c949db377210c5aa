package occupancy

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"pbgym/internal/logger"
	"pbgym/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockEntryRepo struct {
	mock.Mock

	mu         sync.Mutex
	nextID     int
	openByUser map[int]*GymEntry
	closed     []GymEntry
}

// NewMockEntryRepo keeps real open-entry state so concurrent toggle tests
// exercise the same invariants the database would enforce.
func NewMockEntryRepo() *MockEntryRepo {
	return &MockEntryRepo{openByUser: make(map[int]*GymEntry)}
}

func (m *MockEntryRepo) CreateEntry(ctx context.Context, userID int, enteredAt time.Time) (*GymEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry := &GymEntry{ID: m.nextID, UserID: userID, EnteredAt: enteredAt}
	m.openByUser[userID] = entry
	return entry, nil
}

func (m *MockEntryRepo) CloseEntry(ctx context.Context, entryID int, exitedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, open := range m.openByUser {
		if open.ID == entryID {
			exit := exitedAt
			open.ExitedAt = &exit
			m.closed = append(m.closed, *open)
			delete(m.openByUser, userID)
			return nil
		}
	}
	return ErrEntryAlreadyClosed
}

func (m *MockEntryRepo) FindOpenEntryByUser(ctx context.Context, userID int) (*GymEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if open, ok := m.openByUser[userID]; ok {
		return open, nil
	}
	return nil, sql.ErrNoRows
}

func (m *MockEntryRepo) FindOpenEntries(ctx context.Context) ([]GymEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []GymEntry{}
	for _, open := range m.openByUser {
		entries = append(entries, *open)
	}
	return entries, nil
}

func (m *MockEntryRepo) ListEntriesByUser(ctx context.Context, userID, limit int) ([]GymEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []GymEntry{}
	for _, e := range m.closed {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	if open, ok := m.openByUser[userID]; ok {
		entries = append(entries, *open)
	}
	return entries, nil
}

func (m *MockEntryRepo) ClosedEntries() []GymEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GymEntry{}, m.closed...)
}

func (m *MockEntryRepo) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.openByUser)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash string, kind user.Kind) (*user.User, error) {
	args := m.Called(ctx, name, email, passwordHash, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) SavePaymentMethod(ctx context.Context, userID int, ref string, expiresAt time.Time) error {
	return m.Called(ctx, userID, ref, expiresAt).Error(0)
}

type MockPassChecker struct{ mock.Mock }

func (m *MockPassChecker) HasActivePass(ctx context.Context, memberID int) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func memberUser(id int) *user.User {
	return &user.User{ID: id, Name: "Jan", Email: "jan@example.com", Kind: user.KindMember}
}

func TestRegisterActionToggle(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 1).Return(memberUser(1), nil)
	passes.On("HasActivePass", ctx, 1).Return(true, nil)

	// First scan: entry.
	result, err := svc.RegisterAction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ActionEntry, result.Action)
	assert.Nil(t, result.Entry.ExitedAt)
	assert.Equal(t, 1, svc.CurrentCount())

	// Second scan: exit, same visit, entry <= exit.
	result, err = svc.RegisterAction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ActionExit, result.Action)
	require.NotNil(t, result.Entry.ExitedAt)
	assert.False(t, result.Entry.ExitedAt.Before(result.Entry.EnteredAt))
	assert.Equal(t, 0, svc.CurrentCount())

	// Exactly one closed visit in the log.
	closed := repo.ClosedEntries()
	require.Len(t, closed, 1)
	assert.Equal(t, 0, repo.OpenCount())
}

func TestRegisterActionStaffRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 5).Return(&user.User{ID: 5, Kind: user.KindWorker}, nil)

	_, err := svc.RegisterAction(ctx, 5)
	assert.ErrorIs(t, err, ErrWorkerNotScannable)
	assert.Equal(t, 0, svc.CurrentCount())
	passes.AssertNotCalled(t, "HasActivePass")

	// A second attempt fails identically; the presence set never moves.
	_, err = svc.RegisterAction(ctx, 5)
	assert.ErrorIs(t, err, ErrWorkerNotScannable)
	assert.Equal(t, 0, svc.CurrentCount())
}

func TestRegisterActionMemberWithoutPass(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 1).Return(memberUser(1), nil)
	passes.On("HasActivePass", ctx, 1).Return(false, nil)

	_, err := svc.RegisterAction(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActivePass)
	assert.Equal(t, 0, svc.CurrentCount())
}

func TestRegisterActionTrainerNeedsNoPass(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 3).Return(&user.User{ID: 3, Kind: user.KindTrainer}, nil)

	result, err := svc.RegisterAction(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, ActionEntry, result.Action)
	passes.AssertNotCalled(t, "HasActivePass")
}

func TestRegisterActionUnknownUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 99).Return(nil, sql.ErrNoRows)

	_, err := svc.RegisterAction(ctx, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCountTracksDistinctUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	const n = 10
	for i := 1; i <= n; i++ {
		users.On("FindByID", ctx, i).Return(memberUser(i), nil)
		passes.On("HasActivePass", ctx, i).Return(true, nil)
	}

	for i := 1; i <= n; i++ {
		_, err := svc.RegisterAction(ctx, i)
		require.NoError(t, err)
	}
	assert.Equal(t, n, svc.CurrentCount())

	_, err := svc.RegisterAction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, n-1, svc.CurrentCount())
}

func TestConcurrentScansSameBadge(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)
	svc := NewService(repo, users, passes)

	users.On("FindByID", ctx, 1).Return(memberUser(1), nil)
	passes.On("HasActivePass", ctx, 1).Return(true, nil)

	// Two simultaneous scans must resolve to exactly one entry and one
	// exit, never two of either.
	var wg sync.WaitGroup
	actions := make([]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.RegisterAction(ctx, 1)
			require.NoError(t, err)
			actions[i] = result.Action
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{ActionEntry, ActionExit}, actions)
	assert.Equal(t, 0, svc.CurrentCount())
	assert.Len(t, repo.ClosedEntries(), 1)
}

func TestRestoreRebuildsPresence(t *testing.T) {
	ctx := context.Background()
	repo := NewMockEntryRepo()
	users := new(MockUserRepo)
	passes := new(MockPassChecker)

	// Visits left open by a previous process.
	repo.CreateEntry(ctx, 1, time.Now().Add(-time.Hour))
	repo.CreateEntry(ctx, 2, time.Now().Add(-30*time.Minute))

	svc := NewService(repo, users, passes)
	require.NoError(t, svc.Restore(ctx))

	assert.Equal(t, 2, svc.CurrentCount())

	// A scan for a restored user is an exit, not a double entry.
	users.On("FindByID", ctx, 1).Return(memberUser(1), nil)
	passes.On("HasActivePass", ctx, 1).Return(true, nil)

	result, err := svc.RegisterAction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ActionExit, result.Action)
	assert.Equal(t, 1, svc.CurrentCount())
}
