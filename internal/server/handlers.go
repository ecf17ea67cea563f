package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ixann-ui/ukk-todolist/internal/db"
)

// flexID accepts an id sent either as a JSON number or a string
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// int64 parses the id; ok is false when it is empty or not a positive integer
func (f flexID) int64() (int64, bool) {
	if f == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(string(f), 10, 64)
	return n, err == nil && n > 0
}

func paramID(c *gin.Context, name string) (int64, bool) {
	return flexID(c.Param(name)).int64()
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.log.Error("handler failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.serverError(c, err)
		return
	}

	u, err := s.store.CreateUser(req.Name, req.Email, string(hash))
	if errors.Is(err, db.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account created",
		"user":    gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}

	u, err := s.store.GetUserByEmail(req.Email)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not found"})
		return
	}
	if err != nil {
		s.serverError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":       u.ID,
			"name":     u.Name,
			"username": u.Name,
			"email":    u.Email,
		},
	})
}

type createListRequest struct {
	UserID flexID `json:"user_id"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	userID, ok := req.UserID.int64()
	name := strings.TrimSpace(req.Name)
	if !ok || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}

	l, err := s.store.CreateList(userID, name)
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"list":    gin.H{"id": l.ID, "name": l.Name, "user_id": l.UserID},
	})
}

func (s *Server) handleAllLists(c *gin.Context) {
	lists, err := s.store.ListLists()
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) handleUserLists(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}
	lists, err := s.store.ListListsByUser(userID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) handleDeleteList(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid list id"})
		return
	}
	if err := s.store.DeleteList(id); err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type taskRequest struct {
	UserID      flexID  `json:"user_id"`
	ListsID     flexID  `json:"lists_id"`
	ListID      flexID  `json:"list_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// listID resolves lists_id or list_id; nil means no list was given
func (r taskRequest) listID() *int64 {
	for _, v := range []flexID{r.ListsID, r.ListID} {
		if id, ok := v.int64(); ok {
			return &id
		}
	}
	return nil
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	userID, ok := req.UserID.int64()
	if !ok || req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	var description string
	if req.Description != nil {
		description = *req.Description
	}

	t, err := s.store.CreateTask(userID, req.listID(), strings.TrimSpace(*req.Title), description)
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": gin.H{"id": t.ID}})
}

// handleTasks lists the caller's tasks. The caller is identified by the
// userId query parameter or the x-user-id header. An optional listId narrows
// the result to one list.
func (s *Server) handleTasks(c *gin.Context) {
	raw := c.Query("userId")
	if raw == "" {
		raw = c.GetHeader("x-user-id")
	}
	userID, ok := flexID(raw).int64()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var (
		tasks any
		err   error
	)
	if listID, ok := flexID(c.Query("listId")).int64(); ok {
		tasks, err = s.store.ListTasksByList(userID, listID)
	} else {
		tasks, err = s.store.ListTasksByUser(userID)
	}
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleUserTasks(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}
	tasks, err := s.store.ListTasksByUser(userID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid task id"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		req.Title = nil
	}
	listID := req.listID()
	if req.Title == nil && req.Description == nil && listID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}

	err := s.store.UpdateTask(id, req.Title, listID, req.Description)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": gin.H{"id": id}})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid task id"})
		return
	}
	if err := s.store.DeleteTask(id); err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
