package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/database/sqlite"
	"cloud-ide/backend/internal/filetree"
	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/service"
	"cloud-ide/backend/internal/ws"
)

const (
	testSecret        = "test-secret"
	testWebhookSecret = "whsec"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	svc := service.New(store, service.Options{Logger: logger, Publisher: hub})
	h := New(svc, hub, testWebhookSecret, logger)
	router := NewRouter(h, auth.NewJWTProvider(testSecret, ""), []string{"*"}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := auth.CreateJWT([]byte(testSecret), "", auth.Identity{Subject: subject, Email: subject + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a JSON request as the given bearer token and decodes the JSON
// response into out when out is non-nil.
func (s *testServer) do(method, path, tok string, body any, out any) int {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(s.t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) createProject(tok, name string) *models.Project {
	s.t.Helper()
	var p models.Project
	require.Equal(s.t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/projects", tok, map[string]any{"name": name}, &p))
	return &p
}

func (s *testServer) root(tok string, p *models.Project) *models.FileNode {
	s.t.Helper()
	var f models.FileNode
	require.Equal(s.t, http.StatusOK, s.do(http.MethodGet, "/api/v1/projects/"+p.ID.String()+"/files/by-path?path=/src", tok, nil, &f))
	return &f
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/healthz", "", nil, nil))
}

func TestProjectLifecycle(t *testing.T) {
	srv := newTestServer(t)
	alice := token(t, "user_alice")

	p := srv.createProject(alice, "ide")
	assert.Equal(t, "user_alice", p.OwnerID)

	var projects []models.Project
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/projects", alice, nil, &projects))
	require.Len(t, projects, 1)

	var updated models.Project
	require.Equal(t, http.StatusOK, srv.do(http.MethodPatch, "/api/v1/projects/"+p.ID.String(), alice, map[string]any{"name": "renamed"}, &updated))
	assert.Equal(t, "renamed", updated.Name)

	assert.Equal(t, http.StatusNoContent, srv.do(http.MethodDelete, "/api/v1/projects/"+p.ID.String(), alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/v1/projects/"+p.ID.String(), alice, nil, nil))
}

func TestListsRenderEmptyArray(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token(t, "user_new"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestAuthentication(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodPost, "/api/v1/projects", "", map[string]any{"name": "x"}, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/api/v1/projects", "not-a-jwt", nil, nil))

	var projects []models.Project
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/projects", "", nil, &projects))
	assert.Empty(t, projects)
}

func TestFileOperations(t *testing.T) {
	srv := newTestServer(t)
	alice := token(t, "user_alice")
	p := srv.createProject(alice, "ide")
	src := srv.root(alice, p)
	base := "/api/v1/projects/" + p.ID.String()

	var util models.FileNode
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, base+"/files", alice,
		map[string]any{"name": "util.ts", "type": "file", "parentId": src.ID, "content": "export {}"}, &util))
	assert.Equal(t, "/src/util.ts", util.Path)

	assert.Equal(t, http.StatusConflict, srv.do(http.MethodPost, base+"/files", alice,
		map[string]any{"name": "util.ts", "type": "file", "parentId": src.ID}, nil))
	var x models.FileNode
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, base+"/files", alice,
		map[string]any{"name": "x.ts", "path": "/nope/x.ts", "parentId": src.ID}, &x))
	assert.Equal(t, "/src/x.ts", x.Path)

	var saved models.FileNode
	require.Equal(t, http.StatusOK, srv.do(http.MethodPut, "/api/v1/files/"+util.ID.String()+"/content", alice,
		map[string]any{"content": "export const x = 1"}, &saved))
	require.NotNil(t, saved.Content)
	assert.Equal(t, "export const x = 1", *saved.Content)

	require.Equal(t, http.StatusOK, srv.do(http.MethodPut, "/api/v1/files/"+src.ID.String()+"/rename", alice,
		map[string]any{"name": "lib", "path": "/lib"}, nil))

	var got models.FileNode
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/files/"+util.ID.String(), alice, nil, &got))
	assert.Equal(t, "/lib/util.ts", got.Path)

	var tree []*filetree.Node
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, base+"/files/tree", alice, nil, &tree))
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "util.ts", tree[0].Children[0].Name)
	assert.Equal(t, "/lib/x.ts", tree[0].Children[1].Path)

	var moved models.FileNode
	require.Equal(t, http.StatusOK, srv.do(http.MethodPut, "/api/v1/files/"+util.ID.String()+"/move", alice,
		map[string]any{"parentId": nil}, &moved))
	assert.Equal(t, "/util.ts", moved.Path)

	assert.Equal(t, http.StatusNoContent, srv.do(http.MethodDelete, "/api/v1/files/"+util.ID.String(), alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/v1/files/"+util.ID.String(), alice, nil, nil))
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/api/v1/files/not-a-uuid", alice, nil, nil))
}

func TestOwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	alice, bob := token(t, "user_alice"), token(t, "user_bob")
	p := srv.createProject(alice, "ide")
	src := srv.root(alice, p)

	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/v1/projects/"+p.ID.String(), bob, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/v1/files/"+src.ID.String(), bob, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodPut, "/api/v1/files/"+src.ID.String()+"/rename", bob,
		map[string]any{"name": "mine"}, nil))

	var files []models.FileNode
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/projects/"+p.ID.String()+"/files", bob, nil, &files))
	assert.Empty(t, files)
}

func TestConversationEndpoints(t *testing.T) {
	srv := newTestServer(t)
	alice := token(t, "user_alice")
	p := srv.createProject(alice, "ide")

	var c models.Conversation
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/v1/conversations", alice,
		map[string]any{"projectId": p.ID}, &c))
	require.NotNil(t, c.Title)
	assert.Equal(t, models.DefaultConversationTitle, *c.Title)

	cbase := "/api/v1/conversations/" + c.ID.String()
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, cbase+"/messages", alice,
		map[string]any{"role": "user", "content": "hello"}, nil))
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, cbase+"/messages", alice,
		map[string]any{"role": "robot", "content": "x"}, nil))

	var full models.ConversationWithMessages
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, cbase, alice, nil, &full))
	require.Len(t, full.Messages, 1)
	assert.Equal(t, "hello", full.Messages[0].Content)

	var list []models.Conversation
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/conversations?projectId="+p.ID.String(), alice, nil, &list))
	assert.Len(t, list, 1)

	require.Equal(t, http.StatusOK, srv.do(http.MethodPut, cbase+"/title", alice, map[string]any{"title": "Plan"}, nil))
	assert.Equal(t, http.StatusNoContent, srv.do(http.MethodDelete, cbase, alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, cbase, alice, nil, nil))
}

func TestCurrentUserAndWebhook(t *testing.T) {
	srv := newTestServer(t)
	alice := token(t, "user_alice")

	var me models.User
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/me", alice, nil, &me))
	assert.Equal(t, "user_alice@example.com", me.Email)

	body := []byte(`{"subject":"user_alice","email":"new@example.com"}`)
	send := func(sig string) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/webhooks/identity", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set(auth.SignatureHeader, sig)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusUnauthorized, send("sha256=deadbeef"))
	assert.Equal(t, http.StatusOK, send(auth.Sign([]byte(testWebhookSecret), body)))
	assert.Equal(t, http.StatusOK, send(auth.Sign([]byte(testWebhookSecret), body)))

	var again models.User
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/v1/me", alice, nil, &again))
	assert.Equal(t, me.ID, again.ID)
	assert.Equal(t, "new@example.com", again.Email)
}

func TestChangeFeed(t *testing.T) {
	srv := newTestServer(t)
	alice, bob := token(t, "user_alice"), token(t, "user_bob")
	p := srv.createProject(alice, "ide")
	src := srv.root(alice, p)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + p.ID.String()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?auth_token="+bob, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?auth_token="+alice, nil)
	require.NoError(t, err)
	defer conn.Close()

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})
	messages := make(chan []byte, 8)
	go func() {
		defer close(messages)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			messages <- msg
		}
	}()

	// The server starts reading, and so answers pings, only once the client
	// is registered with the hub.
	require.NoError(t, conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)))
	select {
	case <-pong:
	case <-time.After(5 * time.Second):
		t.Fatal("no pong from server")
	}

	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/v1/projects/"+p.ID.String()+"/files", alice,
		map[string]any{"name": "main.ts", "parentId": src.ID}, nil))

	select {
	case msg := <-messages:
		var ev ws.WsMessage
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, ws.EventFileCreated, ev.Type)
		assert.Contains(t, string(ev.Payload), "/src/main.ts")
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}
