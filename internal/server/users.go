package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrum/internal/models"
	"scrum/internal/serializer"
)

// handleListUsers returns every user ordered by identity value.
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context(), s.identity)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := serializer.NewContext(c.Request)
	out := make([]serializer.Representation, 0, len(users))
	for _, u := range users {
		out = append(out, s.users.ToRepresentation(u, ctx))
	}
	respondSuccess(c, http.StatusOK, out)
}

// handleCreateUser registers a new user.
func (s *Server) handleCreateUser(c *gin.Context) {
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	user, err := s.users.FromRepresentation(c.Request.Context(), data, nil, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	user, err = s.store.CreateUser(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, s.users.ToRepresentation(user, serializer.NewContext(c.Request)))
}

func (s *Server) lookupUser(c *gin.Context) (models.User, bool) {
	user, err := s.store.UserByIdentity(c.Request.Context(), s.identity, c.Param("identity"))
	if err != nil {
		s.fail(c, err)
		return models.User{}, false
	}
	return user, true
}

// handleGetUser returns a user addressed by identity value.
func (s *Server) handleGetUser(c *gin.Context) {
	user, ok := s.lookupUser(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, s.users.ToRepresentation(user, serializer.NewContext(c.Request)))
}

// handleUpdateUser applies a full (PUT) or partial (PATCH) update.
func (s *Server) handleUpdateUser(c *gin.Context) {
	current, ok := s.lookupUser(c)
	if !ok {
		return
	}
	data, ok := s.bindData(c)
	if !ok {
		return
	}
	user, err := s.users.FromRepresentation(c.Request.Context(), data, &current, c.Request.Method == http.MethodPatch)
	if err != nil {
		s.fail(c, err)
		return
	}
	user, err = s.store.UpdateUser(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.users.ToRepresentation(user, serializer.NewContext(c.Request)))
}

// handleDeleteUser removes a user and unassigns their tasks.
func (s *Server) handleDeleteUser(c *gin.Context) {
	user, ok := s.lookupUser(c)
	if !ok {
		return
	}
	if err := s.store.DeleteUser(c.Request.Context(), user.ID); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
