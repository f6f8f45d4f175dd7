package service

import (
	"context"
	"sync"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/repository/rdb/rdbtest"
	"ragtime/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	To, Subject, Body string
}

// memMailer 记录所有发出的邮件
type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *memMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *memMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	store   *rdb.Store
	mailer  *memMailer
	redis   *miniredis.Miniredis
	users   *UserService
	follows *FollowService
	comps   *CompositionService
	roles   *RoleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := rdbtest.NewStore(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mailer := &memMailer{}
	roles := NewRoleService(store)
	require.NoError(t, roles.InsertRoles(context.Background()))

	return &testEnv{
		store:  store,
		mailer: mailer,
		redis:  mr,
		users: NewUserService(
			store,
			pkg.NewTokenSigner("test-secret"),
			&redis.TokenRepository{Client: client},
			AdminNamePolicy{AdminName: "admin"},
			NewEmailService(mailer, "admin@example.com"),
		),
		follows: NewFollowService(store),
		comps:   NewCompositionService(store, 20),
		roles:   roles,
	}
}

func noLink(token string) string { return "http://localhost/auth/confirm/" + token }

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "cat",
	}, noLink)
	require.NoError(t, err)
	return u
}

// confirmed 注册并直接确认
func (e *testEnv) confirmed(t *testing.T, username string) *model.User {
	t.Helper()
	u := e.register(t, username)
	u.Confirmed = true
	require.NoError(t, (&rdb.UserRepository{DB: e.store.DB}).Save(context.Background(), u))
	return u
}
