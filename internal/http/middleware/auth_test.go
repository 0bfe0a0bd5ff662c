package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]int64

func (s stubVerifier) Verify(raw string) (int64, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func newAuthRouter(opts AuthOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(opts))
	r.GET("/me", func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func doAuth(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_Bearer(t *testing.T) {
	r := newAuthRouter(AuthOptions{Verifier: stubVerifier{"good": 7}})

	w := doAuth(r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())

	w = doAuth(r, map[string]string{"Authorization": "bearer   good "})
	assert.Equal(t, http.StatusOK, w.Code)

	for _, h := range []string{"Bearer bad", "Bearer", "Basic Zm9vOmJhcg=="} {
		w = doAuth(r, map[string]string{"Authorization": h})
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Contains(t, w.Body.String(), `"unauthorized"`)
	}

	w = doAuth(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_HeaderFallback(t *testing.T) {
	off := newAuthRouter(AuthOptions{})
	assert.Equal(t, http.StatusUnauthorized, doAuth(off, map[string]string{HeaderUserID: "3"}).Code)

	on := newAuthRouter(AuthOptions{AllowHeader: true})
	w := doAuth(on, map[string]string{HeaderUserID: "3"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3}`, w.Body.String())

	for _, v := range []string{"abc", "0", "-4"} {
		assert.Equal(t, http.StatusUnauthorized, doAuth(on, map[string]string{HeaderUserID: v}).Code, v)
	}

	// a bearer header wins over X-User-ID, even when invalid
	both := newAuthRouter(AuthOptions{AllowHeader: true, Verifier: stubVerifier{}})
	assert.Equal(t, http.StatusUnauthorized,
		doAuth(both, map[string]string{"Authorization": "Bearer nope", HeaderUserID: "3"}).Code)
}

func TestAuthenticate_UserMustExist(t *testing.T) {
	lookup := func(_ context.Context, id int64) (bool, error) {
		switch id {
		case 1:
			return true, nil
		case 2:
			return false, nil
		default:
			return false, errors.New("db down")
		}
	}
	r := newAuthRouter(AuthOptions{AllowHeader: true, UserExists: lookup})

	assert.Equal(t, http.StatusOK, doAuth(r, map[string]string{HeaderUserID: "1"}).Code)

	w := doAuth(r, map[string]string{HeaderUserID: "2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unknown user")

	w = doAuth(r, map[string]string{HeaderUserID: "3"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestUserID_Accessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := UserID(c)
	assert.False(t, ok)

	c.Set(userIDKey, "42") // wrong type
	_, ok = UserID(c)
	assert.False(t, ok)

	SetUserID(c, 42)
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)
}
