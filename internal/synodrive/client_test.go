package synodrive

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSID = "sid-123"

func writeSuccess(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	payload := map[string]any{"success": true}
	if data != nil {
		payload["data"] = data
	}
	body, err := jsonMarshal(payload)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeAPIError(t *testing.T, w http.ResponseWriter, code int) {
	t.Helper()
	body, err := jsonMarshal(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code},
	})
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// newLoggedInClient spins up a fake DSM that answers auth.cgi itself and
// forwards everything else to handler.
func newLoggedInClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == authPath {
			writeSuccess(t, w, loginData{SID: testSID})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, nil)
	require.NoError(t, err)
	require.NoError(t, client.Login(t.Context(), "exporter", "hunter2"))
	return client
}

func TestNewRequiresServerURL(t *testing.T) {
	_, err := New("", nil)
	assert.ErrorIs(t, err, ErrNoServerURL)
}

func TestOperationsRequireLogin(t *testing.T) {
	client, err := New("http://127.0.0.1:1", nil)
	require.NoError(t, err)

	_, err = client.ListFolder(t.Context(), MyDriveID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.SharedWithMe(t.Context())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.TeamFolders(t.Context())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.DownloadOfficeFile(t.Context(), "828741283")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// logging out of nothing is fine
	assert.NoError(t, client.Logout(t.Context()))
}

func TestLoginStoresSession(t *testing.T) {
	var loginQuery, listQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case authPath:
			loginQuery = map[string]string{
				"api":     q.Get("api"),
				"method":  q.Get("method"),
				"account": q.Get("account"),
				"passwd":  q.Get("passwd"),
				"session": q.Get("session"),
				"format":  q.Get("format"),
			}
			writeSuccess(t, w, loginData{SID: testSID})
		case entryPath:
			listQuery = map[string]string{"_sid": q.Get("_sid")}
			writeSuccess(t, w, listData{})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, nil)
	require.NoError(t, err)
	require.NoError(t, client.Login(t.Context(), "exporter", "hunter2"))

	assert.Equal(t, map[string]string{
		"api":     authAPI,
		"method":  "login",
		"account": "exporter",
		"passwd":  "hunter2",
		"session": driveSession,
		"format":  "sid",
	}, loginQuery)

	// the sid must ride along on every later call
	_, err = client.ListFolder(t.Context(), MyDriveID)
	require.NoError(t, err)
	assert.Equal(t, testSID, listQuery["_sid"])
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, CodeBadCredentials)
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, nil)
	require.NoError(t, err)

	err = client.Login(t.Context(), "exporter", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeBadCredentials, apiErr.Code)
}

func TestCallHTTPError(t *testing.T) {
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})

	_, err := client.ListFolder(t.Context(), MyDriveID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 404")
}

func TestLogoutEndsSession(t *testing.T) {
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request after logout: %s", r.URL)
	})

	require.NoError(t, client.Logout(t.Context()))

	_, err := client.ListFolder(t.Context(), MyDriveID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
