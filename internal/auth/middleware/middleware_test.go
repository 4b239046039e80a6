package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-dumps/internal/rbac"
)

func TestIssueParse(t *testing.T) {
	a := NewAuthService("k1")
	tok, err := a.IssueJWT("alice", "student")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Sub)
	assert.Equal(t, "student", c.Role)

	_, err = NewAuthService("k2").Parse(tok)
	assert.Error(t, err, "other secret")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Sub: "alice", Role: "admin"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Parse(s)
	assert.Error(t, err, "alg none")
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("k1")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _ := a.IssueJWT("bob", "instructor")
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", gotSub)
	assert.Equal(t, "instructor", gotRole)
}

func TestLoginHandler(t *testing.T) {
	a := NewAuthService("k1")
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := LoginHandler(a, "ops", string(hash))

	for body, want := range map[string]int{
		`{"username":"ops","password":"s3cret"}`: http.StatusOK,
		`{"username":"ops","password":"wrong"}`:  http.StatusUnauthorized,
		`{"username":"eve","password":"s3cret"}`: http.StatusUnauthorized,
		`not json`:                               http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(body)))
		assert.Equal(t, want, rec.Code, body)
		if want == http.StatusOK {
			var out map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			c, err := a.Parse(out["access_token"])
			require.NoError(t, err)
			assert.Equal(t, "admin", c.Role)
		}
	}
}
