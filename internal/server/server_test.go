package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/config"
)

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		Port:            "8443",
		Env:             "test",
		UploadDir:       t.TempDir(),
		SessionTTLHours: 24,
	}
	srv, err := NewServerWithDeps(cfg, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{BodyLimit: bodyLimitBytes})
	srv.SetupRoutes(app)
	return srv, app
}

func jsonRequest(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// login authenticates and returns the session cookie value.
func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest("POST", "/api/login", fiber.Map{
		"username": username,
		"password": password,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatal("login response carried no session cookie")
	return ""
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	return req
}

func TestLoginSuccess(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest("POST", "/api/login", fiber.Map{
		"username": "admin",
		"password": "admin123",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie must be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	body := decodeBody(t, resp)
	assert.Equal(t, "Login successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, "admin", user["role"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword, "credentials must never appear in responses")
}

func TestLoginFailureIsUniform(t *testing.T) {
	_, app := newTestServer(t)

	cases := []fiber.Map{
		{"username": "admin", "password": "wrong"},
		{"username": "nobody", "password": "admin123"},
	}

	var bodies []map[string]any
	for _, payload := range cases {
		resp, err := app.Test(jsonRequest("POST", "/api/login", payload))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		bodies = append(bodies, decodeBody(t, resp))
	}

	// Wrong password and unknown user are indistinguishable.
	assert.Equal(t, bodies[0]["error"], bodies[1]["error"])
}

func TestLoginMalformedBody(t *testing.T) {
	_, app := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCurrentUser(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := login(t, app, "user", "user123")

	resp, err = app.Test(withSession(httptest.NewRequest("GET", "/api/user", nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "user", user["username"])
	assert.Equal(t, "member", user["role"])
}

func TestLogoutInvalidatesSession(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(httptest.NewRequest("POST", "/api/logout", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The destroyed token no longer resolves.
	resp, err = app.Test(withSession(httptest.NewRequest("GET", "/api/user", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutWithoutSession(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreatePostRequiresSession(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "t",
		"content": "c",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndGetPost(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "Hello",
		"content": "World <b>bold</b>",
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decodeBody(t, resp)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "user", created["author"], "author comes from the session")
	assert.Equal(t, "World &lt;b&gt;bold&lt;/b&gt;", created["content"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/posts/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	assert.Equal(t, "Hello", got["title"])
}

func TestCreatePostValidation(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "",
		"content": "c",
	}), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetPosts(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	for _, title := range []string{"one", "two"} {
		resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
			"title":   title,
			"content": "c",
		}), token))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var posts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0]["title"])
	assert.Equal(t, "two", posts[1]["title"])
}

func TestGetPostNotFound(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/99", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetPostInvalidID(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeletePostOwnership(t *testing.T) {
	_, app := newTestServer(t)
	adminToken := login(t, app, "admin", "admin123")
	userToken := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "admin's post",
		"content": "c",
	}), adminToken))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// A non-owner member may not delete it.
	resp, err = app.Test(withSession(httptest.NewRequest("DELETE", "/api/posts/1", nil), userToken))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The post survived the forbidden attempt.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/posts/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The owner may.
	resp, err = app.Test(withSession(httptest.NewRequest("DELETE", "/api/posts/1", nil), adminToken))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/posts/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminDeletesAnyPost(t *testing.T) {
	_, app := newTestServer(t)
	adminToken := login(t, app, "admin", "admin123")
	userToken := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "user's post",
		"content": "c",
	}), userToken))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(withSession(httptest.NewRequest("DELETE", "/api/posts/1", nil), adminToken))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeletePostCascadesComments(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts", fiber.Map{
		"title":   "t",
		"content": "c",
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/api/posts/1/comments", fiber.Map{
		"content": "a comment",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(withSession(httptest.NewRequest("DELETE", "/api/posts/1", nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/posts/1/comments", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var comments []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
	assert.Empty(t, comments)
}

func TestDeletePostNotFound(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "admin", "admin123")

	resp, err := app.Test(withSession(httptest.NewRequest("DELETE", "/api/posts/42", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeletePostRequiresSession(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/posts/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateCommentAnonymously(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest("POST", "/api/posts/1/comments", fiber.Map{
		"content": "drive-by",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	comment := decodeBody(t, resp)
	assert.Equal(t, "anonymous", comment["author"])
	assert.Equal(t, float64(1), comment["postId"])
}

func TestCreateCommentWithSession(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	resp, err := app.Test(withSession(jsonRequest("POST", "/api/posts/1/comments", fiber.Map{
		"content": "signed",
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	comment := decodeBody(t, resp)
	assert.Equal(t, "user", comment["author"])
}

func TestCreateCommentValidation(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest("POST", "/api/posts/1/comments", fiber.Map{
		"content": "",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetCommentsUnknownPost(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/77/comments", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var comments []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
	assert.Empty(t, comments)
}

func multipartUpload(t *testing.T, fieldMime string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", fieldMime)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadRequiresSession(t *testing.T) {
	_, app := newTestServer(t)

	body, contentType := multipartUpload(t, "image/png", []byte("png bytes"))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUploadImage(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	body, contentType := multipartUpload(t, "image/png", []byte("png bytes"))
	req := withSession(httptest.NewRequest("POST", "/api/upload", body), token)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "File uploaded successfully", result["message"])
	url := result["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.NotContains(t, url, "photo.png", "stored name must not derive from the client filename")
}

func TestUploadRejectsNonImage(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	body, contentType := multipartUpload(t, "text/plain", []byte("not an image"))
	req := withSession(httptest.NewRequest("POST", "/api/upload", body), token)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsOversize(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	body, contentType := multipartUpload(t, "image/png", make([]byte, 11<<20))
	req := withSession(httptest.NewRequest("POST", "/api/upload", body), token)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadWithoutFile(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "user", "user123")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	req := withSession(httptest.NewRequest("POST", "/api/upload", &buf), token)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	for _, target := range []string{"/health/live", "/health/ready", "/health"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, target)
	}
}
