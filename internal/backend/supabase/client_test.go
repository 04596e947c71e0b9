package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"todo/internal/service"
)

const testAnonKey = "anon-key"

// fakeServer stands in for the hosted backend.
type fakeServer struct {
	mu           sync.Mutex
	users        map[string]string
	tasks        []service.Task
	nextID       int64
	missingTable bool
	expiresIn    int64
	refreshes    int
	delay        time.Duration

	lastHeader http.Header
	lastQuery  map[string]string
}

func newFakeServer(t *testing.T) (*fakeServer, *Client) {
	t.Helper()

	fs := &fakeServer{
		users:     make(map[string]string),
		nextID:    1,
		expiresIn: 3600,
		lastQuery: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(fs.record)
	r.Post("/auth/v1/signup", fs.signUp)
	r.Post("/auth/v1/token", fs.token)
	r.Route("/rest/v1/tasks", func(r chi.Router) {
		r.Use(fs.requireTable)
		r.Get("/", fs.list)
		r.Post("/", fs.insert)
		r.Delete("/", fs.delete)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return fs, NewWithHTTPClient(srv.URL, testAnonKey, srv.Client(), 2*time.Second, nil)
}

func (fs *fakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.lastHeader = r.Header.Clone()
		fs.lastQuery = make(map[string]string)
		for k, v := range r.URL.Query() {
			fs.lastQuery[k] = v[0]
		}
		delay := fs.delay
		fs.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *fakeServer) requireTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		missing := fs.missingTable
		fs.mu.Unlock()
		if missing {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"code":    "42P01",
				"message": `relation "public.tasks" does not exist`,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *fakeServer) signUp(w http.ResponseWriter, r *http.Request) {
	var c credentials
	_ = json.NewDecoder(r.Body).Decode(&c)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.users[c.Email]; ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":       422,
			"error_code": "user_already_exists",
			"msg":        "User already registered",
		})
		return
	}
	fs.users[c.Email] = c.Password
	writeJSON(w, http.StatusOK, map[string]any{"id": "u-" + c.Email, "email": c.Email})
}

func (fs *fakeServer) token(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		var c credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if pw, ok := fs.users[c.Email]; !ok || pw != c.Password {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"token_type":    "bearer",
			"expires_in":    fs.expiresIn,
			"refresh_token": "refresh-1",
			"user":          map[string]string{"id": "u-" + c.Email, "email": c.Email},
		})
	case "refresh_token":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "Invalid Refresh Token"})
			return
		}
		fs.refreshes++
		n := strconv.Itoa(fs.refreshes + 1)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-" + n,
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-" + n,
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "unsupported grant type"})
	}
}

func (fs *fakeServer) list(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if r.URL.Query().Get("select") == "count" {
		writeJSON(w, http.StatusOK, map[string]int{"count": len(fs.tasks)})
		return
	}
	if len(fs.tasks) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
		return
	}
	out := append([]service.Task(nil), fs.tasks...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (fs *fakeServer) insert(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	task := service.Task{
		ID:        fs.nextID,
		Title:     body["title"],
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	fs.nextID++
	fs.tasks = append(fs.tasks, task)
	writeJSON(w, http.StatusCreated, []service.Task{task})
}

func (fs *fakeServer) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Query().Get("id"), "eq."), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "22P02", "message": "invalid input syntax for type bigint"})
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i, task := range fs.tasks {
		if task.ID == id {
			fs.tasks = append(fs.tasks[:i], fs.tasks[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignUp_Success(t *testing.T) {
	fs, client := newFakeServer(t)

	if err := client.SignUp(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.users["a@b.com"] != "secret" {
		t.Error("expected user to be registered")
	}
}

func TestSignUp_AlreadyRegistered(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.users["a@b.com"] = "secret"

	err := client.SignUp(context.Background(), "a@b.com", "secret")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "User already registered" {
		t.Errorf("expected verbatim backend message, got %q", err.Error())
	}
	if !service.IsKind(err, service.KindAuth) {
		t.Errorf("expected auth error, got %v", service.KindOf(err))
	}
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	_, client := newFakeServer(t)

	_, err := client.SignIn(context.Background(), "nobody@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid login credentials" {
		t.Errorf("expected verbatim backend message, got %q", err.Error())
	}
	if !service.IsKind(err, service.KindAuth) {
		t.Errorf("expected auth error, got %v", service.KindOf(err))
	}
}

func TestSignIn_SessionAuthorizesRequests(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.users["a@b.com"] = "secret"
	ctx := context.Background()

	sess, err := client.SignIn(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.Email != "a@b.com" {
		t.Errorf("expected user email, got %q", sess.User.Email)
	}
	if sess.Token.RefreshToken != "refresh-1" {
		t.Errorf("expected refresh token, got %q", sess.Token.RefreshToken)
	}

	if _, err := client.ListTasks(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fs.lastHeader.Get("Authorization"); got != "Bearer access-1" {
		t.Errorf("expected session bearer, got %q", got)
	}
	if got := fs.lastHeader.Get("apikey"); got != testAnonKey {
		t.Errorf("expected apikey header, got %q", got)
	}
}

func TestSignIn_ExpiredTokenIsRefreshed(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.users["a@b.com"] = "secret"
	fs.expiresIn = 1 // inside oauth2's expiry margin, so already stale
	ctx := context.Background()

	sess, err := client.SignIn(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.ListTasks(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fs.lastHeader.Get("Authorization"); got != "Bearer access-2" {
		t.Errorf("expected refreshed bearer, got %q", got)
	}
	if fs.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", fs.refreshes)
	}

	// The refreshed token is valid for an hour and is reused.
	if _, err := client.ListTasks(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.refreshes != 1 {
		t.Errorf("expected token reuse, got %d refreshes", fs.refreshes)
	}
}

func TestListTasks_AnonymousRequest(t *testing.T) {
	fs, client := newFakeServer(t)

	tasks, err := client.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice for null body, got %#v", tasks)
	}
	if got := fs.lastHeader.Get("Authorization"); got != "Bearer "+testAnonKey {
		t.Errorf("expected anonymous bearer, got %q", got)
	}
	if fs.lastHeader.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
	if fs.lastQuery["order"] != "id.desc" {
		t.Errorf("expected order=id.desc, got %q", fs.lastQuery["order"])
	}
	if fs.lastQuery["select"] != "*" {
		t.Errorf("expected select=*, got %q", fs.lastQuery["select"])
	}
}

func TestInsertThenList_NewestFirst(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	first, err := client.InsertTask(ctx, nil, "Walk dog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.lastHeader.Get("Prefer") != "return=representation" {
		t.Errorf("expected Prefer header, got %q", fs.lastHeader.Get("Prefer"))
	}
	second, err := client.InsertTask(ctx, nil, "Buy milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if second.Completed {
		t.Error("expected completed=false")
	}
	if second.CreatedAt.IsZero() {
		t.Error("expected created_at to be decoded")
	}

	tasks, err := client.ListTasks(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "Buy milk" || tasks[1].Title != "Walk dog" {
		t.Errorf("unexpected list %#v", tasks)
	}
}

func TestDeleteTask_NonexistentIsNotAnError(t *testing.T) {
	fs, client := newFakeServer(t)

	if err := client.DeleteTask(context.Background(), nil, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.lastQuery["id"] != "eq.42" {
		t.Errorf("expected id=eq.42, got %q", fs.lastQuery["id"])
	}
}

func TestProbe(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	if err := client.Probe(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.lastQuery["select"] != "count" {
		t.Errorf("expected select=count, got %q", fs.lastQuery["select"])
	}
	if fs.lastHeader.Get("Accept") != singleObject {
		t.Errorf("expected single object accept header, got %q", fs.lastHeader.Get("Accept"))
	}
}

func TestProbe_MissingTable(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.missingTable = true

	err := client.Probe(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !service.IsKind(err, service.KindSetup) {
		t.Errorf("expected setup error, got %v", service.KindOf(err))
	}
	if err.Error() != `relation "public.tasks" does not exist` {
		t.Errorf("expected verbatim message, got %q", err.Error())
	}
}

func TestRequest_Timeout(t *testing.T) {
	fs, _ := newFakeServer(t)
	fs.delay = 500 * time.Millisecond

	srv := httptest.NewServer(fs.record(http.HandlerFunc(fs.list)))
	t.Cleanup(srv.Close)
	client := NewWithHTTPClient(srv.URL, testAnonKey, srv.Client(), 20*time.Millisecond, nil)

	_, err := client.ListTasks(context.Background(), nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if err.Error() != "request timed out" {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
	if !service.IsKind(err, service.KindBackend) {
		t.Errorf("expected backend error, got %v", service.KindOf(err))
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		auth     bool
		wantKind service.Kind
		wantMsg  string
	}{
		{"rest error", 400, `{"code":"23502","message":"null value in column \"title\""}`, false, service.KindBackend, `null value in column "title"`},
		{"missing table by code", 404, `{"code":"PGRST205","message":"Could not find the table 'public.tasks' in the schema cache"}`, false, service.KindSetup, "Could not find the table 'public.tasks' in the schema cache"},
		{"missing relation text", 400, `{"message":"relation \"public.tasks\" does not exist"}`, false, service.KindSetup, `relation "public.tasks" does not exist`},
		{"missing relation no schema", 400, `{"message":"relation \"tasks\" does not exist"}`, false, service.KindSetup, `relation "tasks" does not exist`},
		{"undefined column", 400, `{"code":"42703","message":"column tasks.count does not exist"}`, false, service.KindBackend, "column tasks.count does not exist"},
		{"other relation", 400, `{"message":"relation \"public.subtasks\" does not exist"}`, false, service.KindBackend, `relation "public.subtasks" does not exist`},
		{"auth msg", 422, `{"code":422,"msg":"Password should be at least 6 characters"}`, true, service.KindAuth, "Password should be at least 6 characters"},
		{"auth description", 400, `{"error":"invalid_grant","error_description":"Email not confirmed"}`, true, service.KindAuth, "Email not confirmed"},
		{"plain text", 502, `bad gateway`, false, service.KindBackend, "bad gateway"},
		{"empty body", 503, ``, false, service.KindBackend, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body), tt.auth)
			if got := service.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
