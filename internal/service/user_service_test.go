package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
)

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, domain.ConflictError("user already exists")
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.NotFoundError("user not found")
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFoundError("user not found")
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByRole(ctx context.Context, role domain.Role) (bool, error) {
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.NotFoundError("user not found")
	}
	delete(r.users, id)
	return nil
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, 6)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, domain.RoleUser, user.Role)
	require.Empty(t, user.PasswordHash, "hash must not leak out of the service")

	stored := repo.users[user.ID]
	require.NotEqual(t, "hunter22", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 6)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@b.co", "secret1"},
		{"missing email", "bob", "", "secret1"},
		{"missing password", "bob", "a@b.co", ""},
		{"short password", "bob", "a@b.co", "abc"},
		{"bad email", "bob", "not-an-email", "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
			require.Error(t, err)
			require.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 6)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "carol@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "carol", "other@example.com", "secret1")
	require.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = svc.Register(ctx, "other", "carol@example.com", "secret1")
	require.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestLoginAfterRegister(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 6)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "dave", "dave@example.com", "secret1")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "dave", "secret1")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.Empty(t, user.PasswordHash)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 6)
	ctx := context.Background()

	_, err := svc.Register(ctx, "erin", "erin@example.com", "secret1")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "erin", "wrong-password")
	_, noUser := svc.Login(ctx, "nobody", "whatever")

	require.Equal(t, domain.KindAuthentication, domain.KindOf(wrongPass))
	require.Equal(t, domain.KindAuthentication, domain.KindOf(noUser))
	require.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestEnsureAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, 6)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	require.True(t, created)

	// second call is a no-op
	created, err = svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	require.False(t, created)

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)
}
