package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, expired bool) string {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "agent-42",
		"role": role,
		"exp":  exp.Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := AgentAuth(testSecret)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestAgentAuthAcceptsValidToken(t *testing.T) {
	rec, c := runAuth(t, "Bearer "+signToken(t, RoleAgent, false))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "agent-42", c.Get("agent_id"))
	assert.Equal(t, RoleAgent, c.Get("role"))
}

func TestAgentAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentAuthRejectsExpiredToken(t *testing.T) {
	rec, _ := runAuth(t, "Bearer "+signToken(t, RoleAgent, true))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentAuthRejectsWrongSecret(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "role": RoleAgent})
	signed, err := tok.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	rec, _ := runAuth(t, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"supervisor allowed", RoleSupervisor, []string{RoleSupervisor}, http.StatusOK},
		{"agent blocked from supervisor route", RoleAgent, []string{RoleSupervisor}, http.StatusForbidden},
		{"agent allowed on shared route", RoleAgent, []string{RoleAgent, RoleSupervisor}, http.StatusOK},
		{"missing role", nil, []string{RoleAgent}, http.StatusForbidden},
		{"unknown role", "CATERING", []string{RoleAgent}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}

			h := RequireRole(tc.allowed...)(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			require.NoError(t, h(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
