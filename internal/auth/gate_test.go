package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected RouteClass
	}{
		{"/admin-login", RouteLogin},
		{"/admin-login/", RouteAdminProtected},
		{"/admin/../admin-login", RouteAdminProtected},
		{"/x/../admin-login", RoutePublic},
		{"/admin", RouteAdminProtected},
		{"/admin/", RouteAdminProtected},
		{"/admin/products/42", RouteAdminProtected},
		{"//admin", RouteAdminProtected},
		{"/admin-login/extra", RouteAdminProtected},
		{"/administrator", RouteAdminProtected},
		{"/api/products", RoutePublic},
		{"/admin/..", RouteAdminProtected},
		{"/admin/../api/products", RouteAdminProtected},
		{"/api/../admin/users", RouteAdminProtected},
		{"/Admin", RoutePublic},
		{"/", RoutePublic},
		{"", RoutePublic},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.path))
		})
	}
}

func TestGate_DotSegmentsDoNotEscapeAdminPrefix(t *testing.T) {
	e := echo.New()
	e.Use(newTestGate(newTestResolver(), nil).Middleware())
	e.GET("/admin/*", func(c echo.Context) error { return c.String(http.StatusOK, "admin") })
	e.GET("/*", func(c echo.Context) error { return c.String(http.StatusOK, "public") })

	for _, target := range []string{"/admin/..", "/admin/../api/products", "/admin/../../health"} {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, "/admin-login", rec.Header().Get(echo.HeaderLocation))
			assert.NotContains(t, rec.Body.String(), "admin")
		})
	}
}

func TestRouteClassString(t *testing.T) {
	assert.Equal(t, "login", RouteLogin.String())
	assert.Equal(t, "admin-protected", RouteAdminProtected.String())
	assert.Equal(t, "public", RoutePublic.String())
}

func newTestGate(resolver IdentityResolver, recorder Recorder) *Gate {
	return NewGate(DefaultPaths, resolver, zap.NewNop(), recorder)
}

// runGate drives the gate once and reports what happened.
func runGate(t *testing.T, gate *Gate, path, token string) (*gateResult, echo.Context) {
	t.Helper()
	c, rec := newContext(newRequest(http.MethodGet, path, token))

	reached := false
	err := gate.Middleware()(func(c echo.Context) error {
		reached = true
		return c.String(http.StatusOK, "ok")
	})(c)

	return &gateResult{code: rec.Code, location: rec.Header().Get(echo.HeaderLocation), reached: reached, err: err}, c
}

type gateResult struct {
	code     int
	location string
	reached  bool
	err      error
}

func TestGate_AdminWithoutTokenRedirectsToLogin(t *testing.T) {
	recorder := newCountingRecorder()
	gate := newTestGate(newTestResolver(), recorder)

	res, _ := runGate(t, gate, "/admin/anything", "")
	require.NoError(t, res.err)
	assert.False(t, res.reached)
	assert.Equal(t, http.StatusTemporaryRedirect, res.code)
	assert.Equal(t, "/admin-login", res.location)
	assert.Equal(t, 1, recorder.count(DecisionRedirectLogin))
}

func TestGate_AdminWithExpiredTokenRedirectsToLogin(t *testing.T) {
	gate := newTestGate(newTestResolver(), nil)

	res, _ := runGate(t, gate, "/admin/anything", expiredToken(adminIdentity))
	require.NoError(t, res.err)
	assert.False(t, res.reached)
	assert.Equal(t, http.StatusTemporaryRedirect, res.code)
	assert.Equal(t, "/admin-login", res.location)
}

func TestGate_AdminWithMalformedTokenRedirectsToLogin(t *testing.T) {
	gate := newTestGate(newTestResolver(), nil)

	res, _ := runGate(t, gate, "/admin", "definitely-not-a-token")
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusTemporaryRedirect, res.code)
	assert.Equal(t, "/admin-login", res.location)
}

func TestGate_LoginWithValidTokenRedirectsHome(t *testing.T) {
	gate := newTestGate(newTestResolver(), nil)
	token := mustIssue(newTestTokens(), editorIdentity)

	res, _ := runGate(t, gate, "/admin-login", token)
	require.NoError(t, res.err)
	assert.False(t, res.reached, "login page must not render for an authenticated user")
	assert.Equal(t, http.StatusTemporaryRedirect, res.code)
	assert.Equal(t, "/admin", res.location)
}

func TestGate_LoginWithoutTokenPassesThrough(t *testing.T) {
	gate := newTestGate(newTestResolver(), nil)

	for _, token := range []string{"", "garbage", expiredToken(adminIdentity)} {
		res, _ := runGate(t, gate, "/admin-login", token)
		require.NoError(t, res.err)
		assert.True(t, res.reached)
		assert.Equal(t, http.StatusOK, res.code)
	}
}

func TestGate_AdminWithValidTokenAttachesIdentity(t *testing.T) {
	recorder := newCountingRecorder()
	gate := newTestGate(newTestResolver(), recorder)
	token := mustIssue(newTestTokens(), adminIdentity)

	res, c := runGate(t, gate, "/admin/orders/../products", token)
	require.NoError(t, res.err)
	assert.True(t, res.reached)
	assert.Equal(t, http.StatusOK, res.code)

	identity, ok := GetIdentity(c)
	require.True(t, ok)
	assert.Equal(t, adminIdentity, *identity)
	assert.Equal(t, "/admin/products", GetPathname(c))
	assert.Equal(t, "/admin/products", c.Request().Header.Get(HeaderPathname))
	assert.Equal(t, 1, recorder.count(DecisionAdmitted))
}

func TestGate_PublicPassesThroughWithoutResolving(t *testing.T) {
	token := mustIssue(newTestTokens(), adminIdentity)

	for _, tok := range []string{"", token, "garbage"} {
		resolver := &stubResolver{err: errors.New("must not be called")}
		gate := newTestGate(resolver, nil)

		res, c := runGate(t, gate, "/api/products", tok)
		require.NoError(t, res.err)
		assert.True(t, res.reached)
		assert.Equal(t, http.StatusOK, res.code)
		assert.Zero(t, resolver.calls)
		assert.Empty(t, c.Request().Header.Get(HeaderPathname))
	}
}

func TestGate_Idempotent(t *testing.T) {
	gate := newTestGate(newTestResolver(), nil)
	token := mustIssue(newTestTokens(), adminIdentity)

	cases := []struct{ path, token string }{
		{"/admin-login", token},
		{"/admin-login", ""},
		{"/admin/x", token},
		{"/admin/x", ""},
		{"/api/products", token},
	}

	for _, tc := range cases {
		first, _ := runGate(t, gate, tc.path, tc.token)
		second, _ := runGate(t, gate, tc.path, tc.token)
		assert.Equal(t, first, second, "path %s", tc.path)
	}
}

func TestGate_StoreOutageIsInternalError(t *testing.T) {
	recorder := newCountingRecorder()
	gate := newTestGate(&stubResolver{err: ErrIdentityUnavailable}, recorder)

	res, _ := runGate(t, gate, "/admin", "")
	assert.False(t, res.reached)

	var httpErr *echo.HTTPError
	require.True(t, errors.As(res.err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	assert.Equal(t, 1, recorder.count(DecisionFault))
}

func TestGate_CustomPaths(t *testing.T) {
	paths := Paths{LoginPath: "/backoffice/login", AdminPrefix: "/backoffice", AdminHome: "/backoffice/home"}
	gate := NewGate(paths, newTestResolver(), zap.NewNop(), nil)

	res, _ := runGate(t, gate, "/backoffice/orders", "")
	assert.Equal(t, "/backoffice/login", res.location)

	res, _ = runGate(t, gate, "/backoffice/login", mustIssue(newTestTokens(), adminIdentity))
	assert.Equal(t, "/backoffice/home", res.location)

	res, _ = runGate(t, gate, "/admin", "")
	assert.True(t, res.reached)
}
