package session

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huydq/ollachat/internal/auth"
	"github.com/huydq/ollachat/internal/config"
	"github.com/huydq/ollachat/internal/user"
)

// memoryRepository implements Repository for handler tests.
type memoryRepository struct {
	sessions map[string]*Session
	messages map[string][]Message
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
	}
}

func (r *memoryRepository) CreateSession(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	stored := *s
	r.sessions[s.ID] = &stored
	return nil
}

func (r *memoryRepository) GetSession(id string) (*Session, error) {
	stored, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *stored
	out.Messages = append([]Message{}, r.messages[id]...)
	return &out, nil
}

func (r *memoryRepository) ListSessionsByUser(userID string) ([]*Session, error) {
	var out []*Session
	for id, s := range r.sessions {
		if s.UserID != nil && *s.UserID == userID {
			copied, _ := r.GetSession(id)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memoryRepository) UpdateSession(id string, title, model *string) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if title != nil {
		s.Title = *title
	}
	if model != nil {
		s.Model = *model
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) ReplaceMessages(sessionID string, messages []Message) error {
	if _, ok := r.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	for i := range messages {
		if messages[i].ID == "" {
			messages[i].ID = uuid.NewString()
		}
		messages[i].SessionID = sessionID
		if messages[i].CreatedAt.IsZero() {
			messages[i].CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Microsecond)
		}
	}
	r.messages[sessionID] = messages
	return nil
}

func (r *memoryRepository) DeleteSession(id string) error {
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	delete(r.messages, id)
	return nil
}

func (r *memoryRepository) ListMessages(sessionID string) ([]Message, error) {
	return append([]Message{}, r.messages[sessionID]...), nil
}

func (r *memoryRepository) CreateMessage(m *Message) error {
	if _, ok := r.sessions[m.SessionID]; !ok {
		return ErrNotFound
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.messages[m.SessionID] = append(r.messages[m.SessionID], *m)
	return nil
}

func (r *memoryRepository) TouchSession(id string) error {
	if s, ok := r.sessions[id]; ok {
		s.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// memoryUserRepo backs the auth service in tests.
type memoryUserRepo struct {
	users map[string]user.User
}

func (r *memoryUserRepo) GetByID(id string) (user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, sql.ErrNoRows
}

func (r *memoryUserRepo) GetByUsername(username string) (user.User, error) {
	u, ok := r.users[username]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (r *memoryUserRepo) Create(u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.Username] = *u
	return nil
}

type testEnv struct {
	router *gin.Engine
	repo   *memoryRepository
	token  string
	userID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userService := user.NewServiceImpl(&memoryUserRepo{users: make(map[string]user.User)})
	created, err := userService.CreateUser(&user.CreateUserRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	authService := auth.NewServiceImpl(userService, config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 1})
	login, err := authService.Login(auth.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	repo := newMemoryRepository()
	controller := NewControllerImpl(NewServiceImpl(repo))

	router := gin.New()
	router.Use(auth.Identify(authService))
	controller.RegisterRoutes(router)

	return &testEnv{router: router, repo: repo, token: login.Token, userID: created.ID}
}

func (e *testEnv) do(t *testing.T, method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreateSessionDefaults(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/sessions", `{}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "New Chat", resp.Session.Title)
	assert.Equal(t, "deepseek-r1:8b", resp.Session.Model)
	require.NotNil(t, resp.Session.UserID)
	assert.Equal(t, env.userID, *resp.Session.UserID)
	assert.NotNil(t, resp.Session.Messages)
}

func TestCreateGuestSessionHasNoOwner(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/sessions", `{"title":"guest chat"}`, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Session.UserID)
}

func TestListSessionsAnonymousIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/sessions", `{}`, true)

	w := env.do(t, http.MethodGet, "/sessions", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":[]}`, w.Body.String())
}

func TestListSessionsReturnsOwnSessions(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/sessions", `{"title":"first"}`, true)
	env.do(t, http.MethodPost, "/sessions", `{"title":"second"}`, true)
	env.do(t, http.MethodPost, "/sessions", `{"title":"guest"}`, false)

	w := env.do(t, http.MethodGet, "/sessions", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sessions, 2)
}

func TestUpdateSessionReplacesMessages(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/sessions", `{}`, true)
	var created struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	body := `{"title":"What is Go?","messages":[` +
		`{"role":"user","content":"What is Go?"},` +
		`{"role":"assistant","content":"A programming language."}]}`
	w = env.do(t, http.MethodPut, "/sessions/"+created.Session.ID, body, true)
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "What is Go?", updated.Session.Title)
	require.Len(t, updated.Session.Messages, 2)
	assert.Equal(t, "user", updated.Session.Messages[0].Role)
	assert.Equal(t, "A programming language.", updated.Session.Messages[1].Content)
}

func TestSessionNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/sessions/missing"},
		{http.MethodPut, "/sessions/missing"},
		{http.MethodDelete, "/sessions/missing"},
	} {
		body := ""
		if tc.method == http.MethodPut {
			body = `{}`
		}
		w := env.do(t, tc.method, tc.path, body, true)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"Session not found"}`, w.Body.String())
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/sessions", `{}`, true)
	var created struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodDelete, "/sessions/"+created.Session.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/sessions/"+created.Session.ID, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMessagesAuthorization(t *testing.T) {
	env := newTestEnv(t)

	// Owned session with one message.
	w := env.do(t, http.MethodPost, "/sessions", `{}`, true)
	var owned struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &owned))
	env.do(t, http.MethodPost, "/messages",
		`{"sessionId":"`+owned.Session.ID+`","role":"user","content":"hi"}`, true)

	// Guest session owned by nobody.
	w = env.do(t, http.MethodPost, "/sessions", `{}`, false)
	var guest struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guest))

	t.Run("missing session id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/messages", "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/messages?sessionId="+owned.Session.ID, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not the owner", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/messages?sessionId="+guest.Session.ID, "", true)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner reads messages", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/messages?sessionId="+owned.Session.ID, "", true)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "hi", resp.Messages[0].Content)
	})
}

func TestCreateMessageValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/messages", `{"sessionId":"x"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())
}

func TestCreateMessageBumpsSession(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/sessions", `{}`, true)
	var created struct {
		Session Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	before := env.repo.sessions[created.Session.ID].UpdatedAt

	time.Sleep(time.Millisecond)
	w = env.do(t, http.MethodPost, "/messages",
		`{"sessionId":"`+created.Session.ID+`","role":"user","content":"hi","attachments":[{"name":"cat.png"}]}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message.ID)
	assert.JSONEq(t, `[{"name":"cat.png"}]`, string(resp.Message.Attachments))
	assert.True(t, env.repo.sessions[created.Session.ID].UpdatedAt.After(before))
}
