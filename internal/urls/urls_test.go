package urls

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverReverse(t *testing.T) {
	r := NewResolver()
	r.Register(TaskDetail, "/api/tasks/:id/")
	r.Register(UserDetail, "/api/users/:username/")
	r.Register(TaskList, "/api/tasks/")

	path, err := r.Reverse(TaskDetail, "7")
	require.NoError(t, err)
	assert.Equal(t, "/api/tasks/7/", path)

	path, err = r.Reverse(UserDetail, "ada lovelace")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/ada%20lovelace/", path)

	path, err = r.Reverse(TaskList)
	require.NoError(t, err)
	assert.Equal(t, "/api/tasks/", path)

	assert.True(t, r.Has(TaskDetail))
	assert.False(t, r.Has(SprintDetail))
}

func TestResolverReverseErrors(t *testing.T) {
	r := NewResolver()
	r.Register(TaskDetail, "/api/tasks/:id/")

	_, err := r.Reverse(SprintDetail, "1")
	assert.Error(t, err)

	_, err = r.Reverse(TaskDetail)
	assert.Error(t, err)

	_, err = r.Reverse(TaskDetail, "1", "2")
	assert.Error(t, err)
}

func TestBaseFromRequest(t *testing.T) {
	assert.Equal(t, Base{}, BaseFromRequest(nil))
	assert.Equal(t, "/api/tasks/1/", Base{}.Absolute("/api/tasks/1/"))

	req := httptest.NewRequest("GET", "http://board.local/api/", nil)
	base := BaseFromRequest(req)
	assert.Equal(t, Base{Scheme: "http", Host: "board.local"}, base)
	assert.Equal(t, "http://board.local/api/tasks/1/", base.Absolute("/api/tasks/1/"))

	req.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", BaseFromRequest(req).Scheme)

	req = httptest.NewRequest("GET", "http://internal:8080/api/", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	req.Header.Set("X-Forwarded-Host", "scrum.example.com")
	assert.Equal(t, Base{Scheme: "https", Host: "scrum.example.com"}, BaseFromRequest(req))
}
