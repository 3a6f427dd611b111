package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/serializer"
	"scrum/internal/storage"
	"scrum/internal/storage/sqlite"
	"scrum/internal/urls"
)

// Store is the record store the handlers work against. Both the SQLite
// store and its Redis cached wrapper satisfy it.
type Store interface {
	serializer.Lookup

	Ping(ctx context.Context) error

	ListUsers(ctx context.Context, field models.IdentityField) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListSprints(ctx context.Context) ([]models.Sprint, error)
	CreateSprint(ctx context.Context, sp models.Sprint) (models.Sprint, error)
	GetSprint(ctx context.Context, id int64) (models.Sprint, error)
	UpdateSprint(ctx context.Context, sp models.Sprint) (models.Sprint, error)
	DeleteSprint(ctx context.Context, id int64) error

	ListTasks(ctx context.Context, filter sqlite.TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	AssignTask(ctx context.Context, taskID int64, userID null.Int64) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

var _ Store = (*sqlite.Store)(nil)

// Config holds the deployment choices the server needs.
type Config struct {
	StaticDir     string
	IdentityField models.IdentityField
}

// Server provides HTTP handlers for the Scrum board backend.
type Server struct {
	engine    *gin.Engine
	store     Store
	logger    *slog.Logger
	staticDir string
	identity  models.IdentityField
	urls      *urls.Resolver

	users   *serializer.UserSerializer
	sprints *serializer.SprintSerializer
	tasks   *serializer.TaskSerializer
}

// New constructs the HTTP server with routes and middleware configured.
func New(store Store, logger *slog.Logger, cfg Config) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdentityField == "" {
		cfg.IdentityField = models.IdentityUsername
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// Identity values may hold an escaped slash, so match on the raw path.
	router.UseRawPath = true
	router.Use(gin.Recovery())

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		staticDir: cfg.StaticDir,
		identity:  cfg.IdentityField,
		urls:      urls.NewResolver(),
	}
	router.Use(srv.requestID(), srv.requestLogger())

	srv.registerRoutes()

	var err error
	if srv.users, err = serializer.NewUserSerializer(srv.identity, srv.urls, store); err != nil {
		return nil, err
	}
	if srv.sprints, err = serializer.NewSprintSerializer(srv.urls, store); err != nil {
		return nil, err
	}
	if srv.tasks, err = serializer.NewTaskSerializer(srv.identity, srv.urls, store); err != nil {
		return nil, err
	}
	return srv, nil
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// URLs exposes the named route table.
func (s *Server) URLs() *urls.Resolver {
	return s.urls
}

// named records the full path of a route under name for link building.
func (s *Server) named(g *gin.RouterGroup, name, relative string) string {
	s.urls.Register(name, g.BasePath()+relative)
	return relative
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET(s.named(api, urls.APIRoot, "/"), s.handleRoot)
		api.GET("/healthz", s.handleHealth)

		users := api.Group("/users")
		{
			users.GET(s.named(users, urls.UserList, "/"), s.handleListUsers)
			users.POST("/", s.handleCreateUser)
			detail := s.named(users, urls.UserDetail, "/:identity/")
			users.GET(detail, s.handleGetUser)
			users.PUT(detail, s.handleUpdateUser)
			users.PATCH(detail, s.handleUpdateUser)
			users.DELETE(detail, s.handleDeleteUser)
		}

		sprints := api.Group("/sprints")
		{
			sprints.GET(s.named(sprints, urls.SprintList, "/"), s.handleListSprints)
			sprints.POST("/", s.handleCreateSprint)
			detail := s.named(sprints, urls.SprintDetail, "/:id/")
			sprints.GET(detail, s.handleGetSprint)
			sprints.PUT(detail, s.handleUpdateSprint)
			sprints.PATCH(detail, s.handleUpdateSprint)
			sprints.DELETE(detail, s.handleDeleteSprint)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET(s.named(tasks, urls.TaskList, "/"), s.handleListTasks)
			tasks.POST("/", s.handleCreateTask)
			detail := s.named(tasks, urls.TaskDetail, "/:id/")
			tasks.GET(detail, s.handleGetTask)
			tasks.PUT(detail, s.handleUpdateTask)
			tasks.PATCH(detail, s.handleUpdateTask)
			tasks.DELETE(detail, s.handleDeleteTask)
			tasks.POST(s.named(tasks, urls.TaskAssign, "/:id/assign/"), s.handleAssignTask)
		}
	}

	s.mountStatic()
}

// handleRoot lists the top level collections.
func (s *Server) handleRoot(c *gin.Context) {
	ctx := serializer.NewContext(c.Request)
	out := gin.H{}
	for key, name := range map[string]string{
		"users":   urls.UserList,
		"sprints": urls.SprintList,
		"tasks":   urls.TaskList,
	} {
		path, err := s.urls.Reverse(name)
		if err != nil {
			s.fail(c, err)
			return
		}
		out[key] = ctx.Base.Absolute(path)
	}
	c.JSON(http.StatusOK, out)
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestID tags every request with an id, reusing the caller's if given.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString("request_id")),
		)
	}
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid identifier."})
		return 0, false
	}
	return id, true
}

// bindData decodes the request body into a plain mapping. An empty body
// is an empty mapping.
func (s *Server) bindData(c *gin.Context) (map[string]any, bool) {
	data := map[string]any{}
	if err := c.ShouldBindJSON(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, true
		}
		s.respondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	return data, true
}

// fail maps serializer and store errors onto HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *serializer.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields())
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

// respondError logs the error and returns a JSON payload. Server side
// failures only expose the status text.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	s.logger.Error("request failed",
		slog.String("path", c.FullPath()),
		slog.String("request_id", c.GetString("request_id")),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	detail := http.StatusText(status)
	if status < http.StatusInternalServerError {
		detail = err.Error()
	}
	c.JSON(status, gin.H{"detail": detail})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
