package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"storefront/internal/domain/user"
	"storefront/internal/rbac"
	"storefront/internal/rbac/presets"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

const (
	testSecret     = "Zx8!qR2#mN5@vB7$kL1^tY4&pW9*cF3(hJ6)dG0"
	testIssuer     = "storefront"
	testCookieName = "session"
)

var (
	adminIdentity  = Identity{ID: uuid.MustParse("6f1c1c52-8c0e-4b8f-9d59-1b7f0c8f0a01"), Email: "admin@example.com", Role: rbac.RoleAdmin}
	editorIdentity = Identity{ID: uuid.MustParse("6f1c1c52-8c0e-4b8f-9d59-1b7f0c8f0a02"), Email: "editor@example.com", Role: rbac.RoleEditor}
)

func newTestTokens() *TokenService {
	return NewTokenService(testSecret, time.Hour, testIssuer)
}

func newTestResolver() *Resolver {
	return NewResolver(newTestTokens(), nil, testCookieName, true)
}

func newTestChecker() *rbac.Checker {
	return rbac.MustNew(presets.Storefront())
}

func mustIssue(tokens *TokenService, identity Identity) string {
	token, _, err := tokens.Issue(identity)
	if err != nil {
		panic(err)
	}
	return token
}

func expiredToken(identity Identity) string {
	tokens := newTestTokens()
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	return mustIssue(tokens, identity)
}

func newRequest(method, target, token string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	return req
}

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// MockAccountReader mocks AccountReader
type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// stubResolver returns a fixed result and counts calls.
type stubResolver struct {
	identity *Identity
	err      error
	calls    int
}

func (s *stubResolver) Resolve(context.Context, *http.Request) (*Identity, error) {
	s.calls++
	return s.identity, s.err
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) Record(decision string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[decision]++
}

func (r *countingRecorder) count(decision string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[decision]
}
