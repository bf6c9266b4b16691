package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kennelhq/kennel"
	"github.com/kennelhq/kennel/database"
	"github.com/kennelhq/kennel/filesystem"
	kennelhttp "github.com/kennelhq/kennel/http"
)

// startServer brings up the full API over a sqlite database and a
// temp-dir upload store, the same wiring the serve command does.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	tmpDir := t.TempDir()

	repos, closeDB, err := database.Connect(ctx, database.Config{
		Type:   "sqlite",
		DSN:    filepath.Join(tmpDir, "kennel.db"),
		Tables: kennel.Tables{Users: "users", Images: "dog_images"},
	})
	require.NoError(t, err)
	t.Cleanup(closeDB)

	storageDir := filepath.Join(tmpDir, "uploads")
	require.NoError(t, os.MkdirAll(storageDir, 0o750))
	root, err := os.OpenRoot(storageDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	tokens, err := kennel.NewTokenIssuer([]byte("e2e-secret"), time.Hour)
	require.NoError(t, err)

	auth := kennel.NewAuthService(repos.Users, tokens)
	images := kennel.NewImageService(repos.Images, filesystem.NewStore(root), kennel.ImageServiceConfig{})

	handler := kennelhttp.NewHandler(&kennelhttp.HandlerConfig{Verifier: tokens}, auth, images)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

// registerAndLogin creates the account and returns a usable token.
func registerAndLogin(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()

	resp := postJSON(t, server, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, server, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func authedRequest(t *testing.T, method, url, token string, body io.Reader, contentType string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func uploadImage(t *testing.T, server *httptest.Server, token, filename string, data []byte) string {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="image"; filename=%q`, filename)},
		"Content-Type":        {"image/jpeg"},
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := authedRequest(t, http.MethodPost, server.URL+"/api/dogs/", token, &buf, w.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.ID)
	return body.ID
}
