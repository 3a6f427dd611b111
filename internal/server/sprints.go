package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrum/internal/models"
	"scrum/internal/serializer"
)

// handleListSprints returns all sprints ordered by end date.
func (s *Server) handleListSprints(c *gin.Context) {
	sprints, err := s.store.ListSprints(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := serializer.NewContext(c.Request)
	out := make([]serializer.Representation, 0, len(sprints))
	for _, sp := range sprints {
		out = append(out, s.sprints.ToRepresentation(sp, ctx))
	}
	respondSuccess(c, http.StatusOK, out)
}

// handleCreateSprint creates a new sprint.
func (s *Server) handleCreateSprint(c *gin.Context) {
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	sprint, err := s.sprints.FromRepresentation(c.Request.Context(), data, nil, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	sprint, err = s.store.CreateSprint(c.Request.Context(), sprint)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, s.sprints.ToRepresentation(sprint, serializer.NewContext(c.Request)))
}

func (s *Server) lookupSprint(c *gin.Context) (models.Sprint, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Sprint{}, false
	}
	sprint, err := s.store.GetSprint(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return models.Sprint{}, false
	}
	return sprint, true
}

// handleGetSprint returns a single sprint.
func (s *Server) handleGetSprint(c *gin.Context) {
	sprint, ok := s.lookupSprint(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, s.sprints.ToRepresentation(sprint, serializer.NewContext(c.Request)))
}

// handleUpdateSprint applies a full (PUT) or partial (PATCH) update.
func (s *Server) handleUpdateSprint(c *gin.Context) {
	current, ok := s.lookupSprint(c)
	if !ok {
		return
	}
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	sprint, err := s.sprints.FromRepresentation(c.Request.Context(), data, &current, c.Request.Method == http.MethodPatch)
	if err != nil {
		s.fail(c, err)
		return
	}
	sprint, err = s.store.UpdateSprint(c.Request.Context(), sprint)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.sprints.ToRepresentation(sprint, serializer.NewContext(c.Request)))
}

// handleDeleteSprint removes a sprint; its tasks return to the backlog.
func (s *Server) handleDeleteSprint(c *gin.Context) {
	sprint, ok := s.lookupSprint(c)
	if !ok {
		return
	}
	if err := s.store.DeleteSprint(c.Request.Context(), sprint.ID); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
