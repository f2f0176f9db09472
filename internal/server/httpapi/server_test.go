package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repos := repomanager.NewInMemoryRepositoryManager()
	_, err := services.Seed(context.Background(), repos, []services.SeedNote{
		{ID: "n1", CourseCode: "MATH201", CourseName: "Linear Algebra", FileURL: "https://files.example/n1", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "n2", CourseCode: "CS101", CourseName: "Programming", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	zl, err := logging.NewZapLogger(io.Discard, "error")
	require.NoError(t, err)

	s := NewServer(":0", zl,
		services.NewUserService(repos, auth.NewSessions("k", time.Hour), auth.DevVerifier{}),
		services.NewNoteService(repos))
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func signIn(t *testing.T, ts *httptest.Server, idp string) (sessionResponse, string) {
	t.Helper()
	status, body := call(t, ts, http.MethodPost, "/api/auth/session", "", sessionRequest{Token: idp})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp, resp.SessionToken
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, tok := signIn(t, ts, "dev:alice:Alice")
	assert.Equal(t, "Alice", resp.Identity.DisplayName)
	require.NotEmpty(t, tok)

	status, body := call(t, ts, http.MethodGet, "/api/auth/session", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var id identityDTO
	require.NoError(t, json.Unmarshal(body, &id))
	assert.Equal(t, resp.Identity.ID, id.ID)

	status, _ = call(t, ts, http.MethodPost, "/api/auth/session/revoke", tok, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, ts, http.MethodGet, "/api/auth/session", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateSession_Errors(t *testing.T) {
	ts := newTestServer(t)

	status, body := call(t, ts, http.MethodPost, "/api/auth/session", "", sessionRequest{Token: "not-dev"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), `"error"`)

	status, _ = call(t, ts, http.MethodPost, "/api/auth/session", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/session"},
		{http.MethodPost, "/api/auth/session/revoke"},
		{http.MethodPost, "/api/notes/n1/vote"},
		{http.MethodPost, "/api/notes/upload"},
	} {
		status, _ := call(t, ts, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, tc.path)

		status, _ = call(t, ts, tc.method, tc.path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, status, tc.path)
	}
}

func TestVoteFlow(t *testing.T) {
	ts := newTestServer(t)
	_, tok := signIn(t, ts, "dev:alice:Alice")

	vote := func(typ string) (int, voteResponse) {
		status, body := call(t, ts, http.MethodPost, "/api/notes/n1/vote", tok, voteRequest{Type: typ})
		var vr voteResponse
		if status == http.StatusOK {
			require.NoError(t, json.Unmarshal(body, &vr))
		}
		return status, vr
	}

	status, vr := vote("up")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, voteResponse{Upvotes: 1}, vr)

	_, vr = vote("up")
	assert.Equal(t, voteResponse{Upvotes: 1}, vr)

	_, vr = vote("down")
	assert.Equal(t, voteResponse{Downvotes: 1}, vr)

	_, vr = vote("remove")
	assert.Equal(t, voteResponse{}, vr)

	status, _ = vote("sideways")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, ts, http.MethodPost, "/api/notes/zzz/vote", tok, voteRequest{Type: "up"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotes_OptionalAuthAttachesUserVote(t *testing.T) {
	ts := newTestServer(t)
	_, tok := signIn(t, ts, "dev:alice:Alice")

	status, _ := call(t, ts, http.MethodPost, "/api/notes/n1/vote", tok, voteRequest{Type: "down"})
	require.Equal(t, http.StatusOK, status)

	decode := func(body []byte) notesResponse {
		var nr notesResponse
		require.NoError(t, json.Unmarshal(body, &nr))
		return nr
	}

	status, body := call(t, ts, http.MethodGet, "/api/notes?num=5", tok, nil)
	require.Equal(t, http.StatusOK, status)
	nr := decode(body)
	require.Len(t, nr.Notes, 2)
	assert.Equal(t, "n2", nr.Notes[0].ID)
	assert.Nil(t, nr.Notes[0].UserVote)
	require.NotNil(t, nr.Notes[1].UserVote)
	assert.Equal(t, "down", *nr.Notes[1].UserVote)

	// anonymous and bad-token readers see no ballot
	for _, token := range []string{"", "garbage"} {
		status, body = call(t, ts, http.MethodGet, "/api/notes", token, nil)
		require.Equal(t, http.StatusOK, status)
		for _, n := range decode(body).Notes {
			assert.Nil(t, n.UserVote)
		}
	}

	status, body = call(t, ts, http.MethodGet, "/api/notes?num=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(body).Notes, 1)

	status, _ = call(t, ts, http.MethodGet, "/api/notes?num=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchAndGet(t *testing.T) {
	ts := newTestServer(t)

	status, body := call(t, ts, http.MethodGet, "/api/notes/search?query=algebra", "", nil)
	require.Equal(t, http.StatusOK, status)
	var nr notesResponse
	require.NoError(t, json.Unmarshal(body, &nr))
	require.Len(t, nr.Notes, 1)
	assert.Equal(t, "n1", nr.Notes[0].ID)

	status, _ = call(t, ts, http.MethodGet, "/api/notes/search?query=", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, ts, http.MethodGet, "/api/notes/n1", "", nil)
	require.Equal(t, http.StatusOK, status)
	var n noteDTO
	require.NoError(t, json.Unmarshal(body, &n))
	assert.Equal(t, "https://files.example/n1", n.FileURL)

	status, _ = call(t, ts, http.MethodGet, "/api/notes/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadNote(t *testing.T) {
	ts := newTestServer(t)
	resp, tok := signIn(t, ts, "dev:alice:Alice")

	status, body := call(t, ts, http.MethodPost, "/api/notes/upload", tok, uploadRequest{
		CourseCode:     " PHY101 ",
		CourseName:     "Mechanics",
		ProfessorNames: []string{"Newton"},
		Tags:           []string{"midterm"},
		FileURL:        "https://files.example/phy",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var n noteDTO
	require.NoError(t, json.Unmarshal(body, &n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "PHY101", n.CourseCode)
	assert.Equal(t, resp.Identity.ID, n.Uploader.ID)
	assert.Equal(t, []string{"Newton"}, n.ProfessorNames)
	assert.Nil(t, n.UserVote)

	status, body = call(t, ts, http.MethodGet, "/api/notes/"+n.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"course_name":"Mechanics"`)

	status, _ = call(t, ts, http.MethodPost, "/api/notes/upload", tok, uploadRequest{CourseCode: "PHY101"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, ts, http.MethodPost, "/api/notes/upload", tok, "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, body := call(t, ts, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, body = call(t, ts, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(string(body), `notehub_server_http_requests_total{method="GET",route="/api/health",status="200"} 1`), string(body))
}
