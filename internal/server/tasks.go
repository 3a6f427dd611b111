package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/serializer"
	"scrum/internal/storage/sqlite"
)

// handleListTasks fetches tasks, optionally only those of ?sprint=<id>.
func (s *Server) handleListTasks(c *gin.Context) {
	var filter sqlite.TaskFilter
	if raw := c.Query("sprint"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"sprint": []string{"A valid integer is required."}})
			return
		}
		filter.SprintID = null.Int64From(id)
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := serializer.NewContext(c.Request)
	out := make([]serializer.Representation, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.tasks.ToRepresentation(t, ctx))
	}
	respondSuccess(c, http.StatusOK, out)
}

// handleCreateTask inserts a new task.
func (s *Server) handleCreateTask(c *gin.Context) {
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	task, err := s.tasks.FromRepresentation(c.Request.Context(), data, nil, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	task, err = s.store.CreateTask(c.Request.Context(), task)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, s.tasks.ToRepresentation(task, serializer.NewContext(c.Request)))
}

func (s *Server) lookupTask(c *gin.Context) (models.Task, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Task{}, false
	}
	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return models.Task{}, false
	}
	return task, true
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, s.tasks.ToRepresentation(task, serializer.NewContext(c.Request)))
}

// handleUpdateTask applies a full (PUT) or partial (PATCH) update. The
// assignment is not writable here.
func (s *Server) handleUpdateTask(c *gin.Context) {
	current, ok := s.lookupTask(c)
	if !ok {
		return
	}
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	task, err := s.tasks.FromRepresentation(c.Request.Context(), data, &current, c.Request.Method == http.MethodPatch)
	if err != nil {
		s.fail(c, err)
		return
	}
	task, err = s.store.UpdateTask(c.Request.Context(), task)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.tasks.ToRepresentation(task, serializer.NewContext(c.Request)))
}

// handleAssignTask sets or clears the assigned user by identity value.
func (s *Server) handleAssignTask(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	value, present := data["assigned"]
	if !present {
		s.fail(c, serializer.Required("assigned"))
		return
	}

	user, err := s.tasks.ResolveAssigned(c.Request.Context(), value)
	if err != nil {
		s.fail(c, err)
		return
	}
	var userID null.Int64
	if user != nil {
		userID = null.Int64From(user.ID)
	}

	task, err = s.store.AssignTask(c.Request.Context(), task.ID, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.tasks.ToRepresentation(task, serializer.NewContext(c.Request)))
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), task.ID); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
