// ABOUTME: Tests for the game authority API client
// ABOUTME: Uses httptest to mock authority responses and failures

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("expected POST /auth/login, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no bearer token on login")
		}
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if creds.Username != "alice" || creds.Password != "secret" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AuthResponse{Token: "tok", User: &User{Username: "alice"}})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "stale" }))
	resp, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "tok" || resp.User.Username != "alice" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRequest_SendsBearerAndRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"games": []interface{}{}})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "tok" }))
	games, err := c.ListGames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if games == nil || len(games) != 0 {
		t.Errorf("expected empty non-nil listing, got %v", games)
	}
}

func TestMe_UsesExplicitToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer saved" {
			t.Errorf("expected the saved token, got %q", got)
		}
		json.NewEncoder(w).Encode(User{Username: "alice"})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "other" }))
	user, err := c.Me(context.Background(), "saved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}
}

func TestGetGame_DecodesSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/7" {
			t.Errorf("expected path /games/7, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": 7, "players": ["alice", "bob"], "status": "in_progress",
			"board": [["x", null, ""], ["O"], null], "next_player": "bob", "winner": null}`))
	}))
	defer server.Close()

	c := New(server.URL)
	snap, err := c.GetGame(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ID != "7" {
		t.Errorf("expected id 7, got %q", snap.ID)
	}
	if snap.Board[0][0] != MarkX || snap.Board[1][0] != MarkO || snap.Board[0][1] != Empty {
		t.Errorf("unexpected board %v", snap.Board)
	}
	if snap.NextPlayer != "bob" || snap.Winner != nil {
		t.Errorf("unexpected turn or winner: %+v", snap)
	}
}

func TestSubmitMove_Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/games/3/move" {
			t.Errorf("expected POST /games/3/move, got %s %s", r.Method, r.URL.Path)
		}
		var m Move
		json.NewDecoder(r.Body).Decode(&m)
		if m != (Move{X: 2, Y: 1}) {
			t.Errorf("unexpected move %v", m)
		}
		json.NewEncoder(w).Encode(GameSnapshot{ID: "3", Status: StatusInProgress})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "tok" }))
	if _, err := c.SubmitMove(context.Background(), "3", Move{X: 2, Y: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestErrorResponse_Kinds(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    error
		message string
	}{
		{http.StatusUnauthorized, `{"error": "Invalid token"}`, ErrUnauthenticated, "Invalid token"},
		{http.StatusForbidden, `{"error": "Not your turn"}`, ErrForbidden, "Not your turn"},
		{http.StatusNotFound, `{"detail": "Game not found"}`, ErrNotFound, "Game not found"},
		{http.StatusConflict, `{"error": "Game is full"}`, ErrConflict, "Game is full"},
		{http.StatusBadRequest, `{"details": "Cell occupied"}`, ErrRejected, "Cell occupied"},
		{http.StatusBadGateway, `not json`, ErrServer, "backend returned status 502"},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))

		c := New(server.URL)
		_, err := c.GetGame(context.Background(), "1")
		server.Close()

		if !errors.Is(err, tt.kind) {
			t.Errorf("status %d: expected kind %v, got %v", tt.status, tt.kind, err)
			continue
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *Error, got %T", tt.status, err)
		}
		if apiErr.Message != tt.message || apiErr.Status != tt.status || apiErr.RequestID == "" {
			t.Errorf("status %d: unexpected error %+v", tt.status, apiErr)
		}
	}
}

func TestConnectionError(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.ListGames(context.Background())
	if !IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
	if IsUnauthenticated(err) {
		t.Error("a network failure must not look like a rejected session")
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(GameSnapshot{ID: "1"})
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetGame(ctx, "1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(GameSnapshot{ID: "1"})
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.GetGame(ctx, "1")
	if !errors.Is(err, context.DeadlineExceeded) || !IsNetwork(err) {
		t.Errorf("expected timed out network error, got %v", err)
	}
}

func TestInvalidResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": [}`))
	}))
	defer server.Close()

	c := New(server.URL)
	if _, err := c.GetGame(context.Background(), "1"); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestConcurrentReadsShareOneRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		json.NewEncoder(w).Encode(GameSnapshot{ID: "1", Status: StatusWaiting})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "tok" }))

	var wg sync.WaitGroup
	results := make([]*GameSnapshot, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetGame(context.Background(), "1")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n != 1 {
		t.Errorf("expected one shared request, got %d", n)
	}
	for i, r := range results {
		if r == nil || r.ID != "1" {
			t.Errorf("reader %d: unexpected result %v", i, r)
		}
	}
	if results[0] == results[1] {
		t.Error("expected each reader to get its own snapshot")
	}
}

func TestWritesAreNotShared(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(GameSnapshot{ID: "1"})
	}))
	defer server.Close()

	c := New(server.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.CreateGame(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("expected two create requests, got %d", n)
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New("http://example.com/", WithTimeout(time.Second))
	if c.BaseURL() != "http://example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
	if c.httpClient.Timeout != time.Second {
		t.Errorf("expected timeout option applied, got %s", c.httpClient.Timeout)
	}
}

func TestSharedRead_SurvivesFirstCallerCancel(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		json.NewEncoder(w).Encode(GameSnapshot{ID: "1", Status: StatusInProgress})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "tok" }))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetGame(firstCtx, "1")
		firstErr <- err
	}()
	for hits.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	type result struct {
		snap *GameSnapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := c.GetGame(context.Background(), "1")
		second <- result{snap, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the first caller to see its own cancel, got %v", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second caller failed with the first caller's cancel: %v", got.err)
	}
	if got.snap.ID != "1" {
		t.Errorf("unexpected snapshot %+v", got.snap)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected one shared request, got %d", n)
	}
}
