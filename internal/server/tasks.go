package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskscore/internal/models"
	"taskscore/internal/scoring"
)

// taskView is a task as returned to clients, with its score derived at
// response time.
type taskView struct {
	models.Task
	Score int `json:"score"`
}

func (s *Server) view(t models.Task) taskView {
	return taskView{Task: t, Score: scoring.Score(t, s.now())}
}

// bindTask decodes the request body onto a task with defaults applied, so
// omitted fields keep priority 3, status "pending" and a fresh creation time.
func (s *Server) bindTask(c *gin.Context) (models.Task, bool) {
	task := models.NewTask("")
	task.CreatedAt = s.now().UTC()
	if err := c.ShouldBindJSON(&task); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return models.Task{}, false
	}
	if strings.TrimSpace(task.Title) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return models.Task{}, false
	}
	return task, true
}

// handleListTasks returns every task, optionally filtered by exact status.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	status := c.Query("status")
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		views = append(views, s.view(t))
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": views})
}

// handleGetTask fetches a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, found, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": s.view(task)})
}

// handleCreateTask stores a new task and reports its assigned id.
func (s *Server) handleCreateTask(c *gin.Context) {
	task, ok := s.bindTask(c)
	if !ok {
		return
	}

	if err := s.store.Create(c.Request.Context(), &task); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respondSuccess(c, http.StatusCreated, gin.H{"task": s.view(task)})
}

// handleUpdateTask replaces a task wholesale.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, ok := s.bindTask(c)
	if !ok {
		return
	}
	task.ID = id

	updated, err := s.store.Update(c.Request.Context(), id, &task)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if !updated {
		respondNotFound(c)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": s.view(task)})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deleted, err := s.store.Delete(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if !deleted {
		respondNotFound(c)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
