package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, "abc-123", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLen+1))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Len(t, seen, 36, "oversized ids are replaced by a uuid")
}

func TestWithRecover(t *testing.T) {
	h := WithRecover()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")

	abort := WithRecover()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestWithLogging_PassesStatus(t *testing.T) {
	h := WithLogging()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(mk("a"), mk("b"))(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b"}, order)

	order = nil
	Chain()(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Empty(t, order)
}

var secret = []byte("test-secret")

func sign(t *testing.T, claims AdminClaims) string {
	t.Helper()
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func claimsFor(tenants ...string) AdminClaims {
	return AdminClaims{
		Tenants: tenants,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "i18nmail",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func adminRouter(cfg AdminConfig) http.Handler {
	r := chi.NewRouter()
	r.With(TenantAdmin(cfg, "tenant")).Get("/t/{tenant}", okHandler)
	return r
}

func TestRequireAdmin(t *testing.T) {
	h := adminRouter(AdminConfig{Secret: secret, Issuer: "i18nmail"})

	expired := claimsFor("acme.com")
	expired.ExpiresAt = jwtv5.NewNumericDate(time.Now().Add(-time.Minute))
	noExp := claimsFor("acme.com")
	noExp.ExpiresAt = nil
	wrongIss := claimsFor("acme.com")
	wrongIss.Issuer = "someone-else"

	tests := []struct {
		name   string
		auth   string
		tenant string
		want   int
	}{
		{"missing", "", "acme.com", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "acme.com", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", "acme.com", http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, expired), "acme.com", http.StatusUnauthorized},
		{"no exp", "Bearer " + sign(t, noExp), "acme.com", http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + sign(t, wrongIss), "acme.com", http.StatusUnauthorized},
		{"other tenant", "Bearer " + sign(t, claimsFor("other.com")), "acme.com", http.StatusForbidden},
		{"tenant match", "Bearer " + sign(t, claimsFor("acme.com")), "acme.com", http.StatusOK},
		{"tenant differs in case", "Bearer " + sign(t, claimsFor("acme.com")), "ACME.com", http.StatusForbidden},
		{"claim differs in case", "Bearer " + sign(t, claimsFor("ACME.com")), "acme.com", http.StatusForbidden},
		{"wildcard", "bearer " + sign(t, claimsFor(AllTenants)), "acme.com", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/t/"+tt.tenant, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestAdminClaims_CanAccess(t *testing.T) {
	cl := claimsFor("acme", "b.com")
	require.True(t, cl.CanAccess("acme"))
	require.True(t, cl.CanAccess("b.com"))
	require.False(t, cl.CanAccess("ACME"))
	require.False(t, cl.CanAccess("Acme"))
	require.False(t, cl.CanAccess(""))

	all := claimsFor(AllTenants)
	require.True(t, all.CanAccess("ACME"))
}

func TestRequireAdmin_DisabledWithoutSecret(t *testing.T) {
	rr := httptest.NewRecorder()
	adminRouter(AdminConfig{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/t/acme.com", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdmin_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claimsFor("acme.com")).SignedString(secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/t/acme.com", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	adminRouter(AdminConfig{Secret: secret}).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
