// Package server is the REST backend the todo client syncs with.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// Store defines the persistence used by the handlers
type Store interface {
	CreateUser(name, email, passwordHash string) (*models.Account, error)
	GetUserByEmail(email string) (*models.Account, error)

	CreateList(userID int64, name string) (*models.ListRecord, error)
	ListLists() ([]models.ListRecord, error)
	ListListsByUser(userID int64) ([]models.ListRecord, error)
	DeleteList(id int64) error

	CreateTask(userID int64, listID *int64, title, description string) (*models.TaskRecord, error)
	ListTasksByUser(userID int64) ([]models.TaskRecord, error)
	ListTasksByList(userID, listID int64) ([]models.TaskRecord, error)
	UpdateTask(id int64, title *string, listID *int64, description *string) error
	DeleteTask(id int64) error
}

// Options configures a Server
type Options struct {
	Logger *log.Logger

	// BcryptCost defaults to 10
	BcryptCost int
}

// Server is the todo web server
type Server struct {
	store      Store
	router     *gin.Engine
	log        *log.Logger
	bcryptCost int
}

// New creates a new web server
func New(store Store, opts Options) *Server {
	router := gin.New()

	s := &Server{
		store:      store,
		router:     router,
		log:        opts.Logger,
		bcryptCost: opts.BcryptCost,
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}

	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	{
		users := api.Group("/users")
		users.POST("/register", s.handleRegister)
		users.POST("/login", s.handleLogin)

		lists := api.Group("/lists")
		lists.POST("", s.handleCreateList)
		lists.GET("", s.handleAllLists)
		lists.GET("/:user_id", s.handleUserLists)
		lists.DELETE("/:id", s.handleDeleteList)

		tasks := api.Group("/tasks")
		tasks.POST("", s.handleCreateTask)
		tasks.GET("", s.handleTasks)
		tasks.GET("/user/:user_id", s.handleUserTasks)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"took", time.Since(start),
		}
		switch {
		case status >= 500:
			s.log.Error("request", fields...)
		case status >= 400:
			s.log.Warn("request", fields...)
		default:
			s.log.Debug("request", fields...)
		}
	}
}
