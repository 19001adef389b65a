package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/user"
	"storefront/internal/rbac"
	"storefront/internal/rbac/presets"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret     = "Zx8!qR2#mN5@vB7$kL1^tY4&pW9*cF3(hJ6)dG0"
	testCookieName = "session"
	testPassword   = "hunter2-but-longer"
)

// MockUserStore mocks repository.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserStore) UpdateRole(ctx context.Context, input user.UpdateRoleInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

type testEnv struct {
	tokens   *auth.TokenService
	resolver *auth.Resolver
	checker  *rbac.Checker
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	tokens := auth.NewTokenService(testSecret, time.Hour, "storefront")
	return &testEnv{
		tokens:   tokens,
		resolver: auth.NewResolver(tokens, nil, testCookieName, true),
		checker:  rbac.MustNew(presets.Storefront()),
		logger:   zap.NewNop(),
	}
}

func (env *testEnv) token(t *testing.T, identity auth.Identity) string {
	t.Helper()
	token, _, err := env.tokens.Issue(identity)
	require.NoError(t, err)
	return token
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}
