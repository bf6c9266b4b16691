package e2e_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLogin(t *testing.T) {
	server := startServer(t)

	t.Run("register then login", func(t *testing.T) {
		token := registerAndLogin(t, server, "alice", "password1")
		assert.NotEmpty(t, token)
	})

	t.Run("duplicate registration is 409", func(t *testing.T) {
		resp := postJSON(t, server, "/api/auth/register", map[string]string{
			"username": "alice",
			"password": "password1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("short password is 400", func(t *testing.T) {
		resp := postJSON(t, server, "/api/auth/register", map[string]string{
			"username": "bob",
			"password": "abc",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		resp := postJSON(t, server, "/api/auth/login", map[string]string{
			"username": "alice",
			"password": "wrong-password",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user is 401", func(t *testing.T) {
		resp := postJSON(t, server, "/api/auth/login", map[string]string{
			"username": "ghost",
			"password": "password1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestImageLifecycle(t *testing.T) {
	server := startServer(t)
	token := registerAndLogin(t, server, "alice", "password1")

	id := uploadImage(t, server, token, "rex.jpg", []byte("jpeg bytes"))

	t.Run("get returns the uploaded bytes", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/"+id, token, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(data))
	})

	t.Run("list includes the image", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/", token, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
			Data  []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)

		assert.Equal(t, 1, body.Page)
		assert.Equal(t, 10, body.Limit)
		assert.Equal(t, 1, body.Total)
		require.Len(t, body.Data, 1)
		assert.Equal(t, id, body.Data[0].ID)
		assert.Equal(t, "rex.jpg", body.Data[0].Name)
	})

	t.Run("update replaces the content", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		h := map[string][]string{
			"Content-Disposition": {fmt.Sprintf(`form-data; name="image"; filename=%q`, "better.png")},
			"Content-Type":        {"image/png"},
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("png bytes"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := authedRequest(t, http.MethodPut, server.URL+"/api/dogs/"+id, token, &buf, w.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		getReq := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/"+id, token, nil, "")
		getResp, err := http.DefaultClient.Do(getReq)
		require.NoError(t, err)
		defer func() { _ = getResp.Body.Close() }()

		assert.Equal(t, "image/png", getResp.Header.Get("Content-Type"))
		data, err := io.ReadAll(getResp.Body)
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
	})

	t.Run("delete removes the image", func(t *testing.T) {
		req := authedRequest(t, http.MethodDelete, server.URL+"/api/dogs/"+id, token, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		getReq := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/"+id, token, nil, "")
		getResp, err := http.DefaultClient.Do(getReq)
		require.NoError(t, err)
		defer func() { _ = getResp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	})
}

func TestOwnershipIsolation(t *testing.T) {
	server := startServer(t)

	aliceToken := registerAndLogin(t, server, "alice", "password1")
	bobToken := registerAndLogin(t, server, "bob", "password2")

	aliceImage := uploadImage(t, server, aliceToken, "rex.jpg", []byte("alice's dog"))

	t.Run("bob cannot read alice's image", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/"+aliceImage, bobToken, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("bob cannot delete alice's image", func(t *testing.T) {
		req := authedRequest(t, http.MethodDelete, server.URL+"/api/dogs/"+aliceImage, bobToken, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("bob's list does not include alice's image", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/", bobToken, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Total int   `json:"total"`
			Data  []any `json:"data"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, 0, body.Total)
		assert.Empty(t, body.Data)
	})

	t.Run("alice still sees her image", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, server.URL+"/api/dogs/"+aliceImage, aliceToken, nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := startServer(t)

	t.Run("missing token is 401", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/dogs/")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token is 403", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/api/dogs/", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer garbage")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
