// ABOUTME: In-process game authority serving the auth, lobby and game endpoints
// ABOUTME: Backs client tests and the dev-authority command with in-memory state

package authority

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/markalston/tictactoe-client/internal/client"
)

// DefaultTokenTTL is how long issued tokens stay valid
const DefaultTokenTTL = 24 * time.Hour

// Request is one recorded call, kept for assertions in tests
type Request struct {
	Method string
	Path   string
	User   string
}

// Server is an in-memory authority. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	clock    func() time.Time
	users    map[string]string
	games    map[client.GameID]*game
	order    []client.GameID
	nextID   int
	requests []Request
	engine   *gin.Engine
	logger   *slog.Logger
}

// Option customizes a Server
type Option func(*Server)

// WithSecret sets the HMAC key used to sign tokens
func WithSecret(secret string) Option {
	return func(s *Server) {
		s.secret = []byte(secret)
	}
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates an authority with no users and no games
func New(opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: DefaultTokenTTL,
		clock:    time.Now,
		users:    make(map[string]string),
		games:    make(map[client.GameID]*game),
		nextID:   1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequest)

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)

	authed := r.Group("/", s.requireAuth)
	authed.GET("/auth/me", s.me)
	authed.GET("/games", s.listGames)
	authed.POST("/games", s.createGame)
	authed.GET("/history", s.history)
	authed.GET("/games/:id", s.getGame)
	authed.POST("/games/:id/join", s.joinGame)
	authed.POST("/games/:id/move", s.move)

	s.engine = r
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddUser registers a user directly, bypassing the API
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// TokenFor issues a valid token for an existing or new user
func (s *Server) TokenFor(username string) string {
	s.mu.Lock()
	if _, ok := s.users[username]; !ok {
		s.users[username] = ""
	}
	s.mu.Unlock()
	token, _ := s.issueToken(username)
	return token
}

// Expire deletes a game, as an authority enforcing abandonment timeouts would
func (s *Server) Expire(id client.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Game returns the current state of a game
func (s *Server) Game(id client.GameID) (client.GameSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return client.GameSnapshot{}, false
	}
	return g.view(), true
}

// Requests returns every call recorded so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many recorded calls match method and path
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// logRequest logs and records each request with timing and correlation ID
func (s *Server) logRequest(c *gin.Context) {
	start := time.Now()
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)

	c.Next()

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		User:   c.GetString(usernameKey),
	})
	s.mu.Unlock()

	s.logger.Debug("Request completed",
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
}

// writeError writes an error response as JSON with the given status code
func writeError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "code": code})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	s.mu.Lock()
	_, taken := s.users[req.Username]
	if !taken {
		s.users[req.Username] = req.Password
	}
	s.mu.Unlock()
	if taken {
		writeError(c, http.StatusConflict, "Username already taken")
		return
	}

	s.respondWithToken(c, req.Username)
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	password, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || password != req.Password {
		writeError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.respondWithToken(c, req.Username)
}

func (s *Server) respondWithToken(c *gin.Context, username string) {
	token, err := s.issueToken(username)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, client.AuthResponse{Token: token, User: &client.User{Username: username}})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, client.User{Username: c.GetString(usernameKey)})
}

// listGames returns joinable games plus the caller's unfinished ones
func (s *Server) listGames(c *gin.Context) {
	username := c.GetString(usernameKey)

	s.mu.Lock()
	games := make([]client.GameSummary, 0, len(s.order))
	for _, id := range s.order {
		g, ok := s.games[id]
		if !ok || g.snap.Status == client.StatusComplete {
			continue
		}
		if g.snap.Status == client.StatusWaiting || g.snap.HasPlayer(username) {
			v := g.view()
			games = append(games, client.GameSummary{ID: v.ID, Players: v.Players, Status: v.Status})
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"games": games})
}

// history returns the caller's complete games, newest first
func (s *Server) history(c *gin.Context) {
	username := c.GetString(usernameKey)

	s.mu.Lock()
	games := make([]client.GameSnapshot, 0)
	for _, id := range s.order {
		g, ok := s.games[id]
		if ok && g.snap.Status == client.StatusComplete && g.snap.HasPlayer(username) {
			games = append(games, g.view())
		}
	}
	s.mu.Unlock()

	sort.SliceStable(games, func(i, j int) bool {
		a, _ := strconv.Atoi(string(games[i].ID))
		b, _ := strconv.Atoi(string(games[j].ID))
		return a > b
	})
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) createGame(c *gin.Context) {
	username := c.GetString(usernameKey)

	s.mu.Lock()
	id := client.GameID(strconv.Itoa(s.nextID))
	s.nextID++
	g := newGame(id, username)
	s.games[id] = g
	s.order = append(s.order, id)
	view := g.view()
	s.mu.Unlock()

	c.JSON(http.StatusOK, view)
}

func (s *Server) getGame(c *gin.Context) {
	s.mu.Lock()
	g, ok := s.games[client.GameID(c.Param("id"))]
	var view client.GameSnapshot
	if ok {
		view = g.view()
	}
	s.mu.Unlock()

	if !ok {
		writeError(c, http.StatusNotFound, "Game not found")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) joinGame(c *gin.Context) {
	username := c.GetString(usernameKey)

	s.mu.Lock()
	g, ok := s.games[client.GameID(c.Param("id"))]
	var err error
	var view client.GameSnapshot
	if ok {
		err = g.join(username)
		view = g.view()
	}
	s.mu.Unlock()

	switch {
	case !ok:
		writeError(c, http.StatusNotFound, "Game not found")
	case err != nil:
		writeError(c, http.StatusConflict, err.Error())
	default:
		c.JSON(http.StatusOK, view)
	}
}

func (s *Server) move(c *gin.Context) {
	username := c.GetString(usernameKey)

	var m client.Move
	if err := c.ShouldBindJSON(&m); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid move")
		return
	}

	s.mu.Lock()
	g, ok := s.games[client.GameID(c.Param("id"))]
	var err error
	var view client.GameSnapshot
	if ok {
		err = g.move(username, m)
		view = g.view()
	}
	s.mu.Unlock()

	if !ok {
		writeError(c, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		writeError(c, moveErrorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

func moveErrorStatus(err error) int {
	switch {
	case errors.Is(err, errNotYourTurn), errors.Is(err, errNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, errGameOver), errors.Is(err, errNotStarted):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
