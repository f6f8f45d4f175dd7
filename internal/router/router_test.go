package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/repository/rdb/rdbtest"
	"ragtime/internal/repository/redis"
	"ragtime/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string) error { return nil }

type testApp struct {
	srv   *httptest.Server
	store *rdb.Store
	users *service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := rdbtest.NewStore(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	roles := service.NewRoleService(store)
	require.NoError(t, roles.InsertRoles(context.Background()))
	users := service.NewUserService(
		store,
		pkg.NewTokenSigner("test-secret"),
		&redis.TokenRepository{Client: client},
		service.AdminNamePolicy{AdminName: "admin"},
		service.NewEmailService(nopMailer{}, ""),
	)

	r := InitRouter(Deps{
		Store:            store,
		Users:            users,
		Follows:          service.NewFollowService(store),
		Compositions:     service.NewCompositionService(store, 20),
		Roles:            roles,
		SecretKey:        "test-secret",
		FollowersPerPage: 20,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, store: store, users: users}
}

// browser 带 cookie jar 的客户端
func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

type response struct {
	Status int
	Header http.Header
	Body   map[string]any
}

func do(t *testing.T, c *http.Client, req *http.Request) response {
	t.Helper()
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := response{Status: res.StatusCode, Header: res.Header}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

func (a *testApp) request(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			r = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(b)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// user 注册用户，confirmed 时直接确认
func (a *testApp) user(t *testing.T, username string, confirmed bool) *model.User {
	t.Helper()
	ctx := context.Background()
	u, err := a.users.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "cat",
	}, func(string) string { return "" })
	require.NoError(t, err)
	if confirmed {
		token, err := a.users.GenerateConfirmationToken(u, time.Hour)
		require.NoError(t, err)
		uow, err := a.store.Begin(ctx)
		require.NoError(t, err)
		require.True(t, a.users.Confirm(ctx, uow, u, token))
		require.NoError(t, uow.Commit())
	}
	return u
}

func basic(req *http.Request, user, pass string) *http.Request {
	req.SetBasicAuth(user, pass)
	return req
}
