package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatusLabels(t *testing.T) {
	want := map[TaskStatus]string{
		StatusNotStarted: "Not Started",
		StatusInProgress: "In Progress",
		StatusTesting:    "Testing",
		StatusDone:       "Done",
	}
	require.Len(t, TaskStatuses, len(want))
	for _, s := range TaskStatuses {
		assert.True(t, s.Valid())
		assert.Equal(t, want[s], s.String())
		assert.Equal(t, want[s], Task{Status: s}.StatusDisplay())
	}

	assert.False(t, TaskStatus(0).Valid())
	assert.False(t, TaskStatus(5).Valid())
	assert.Equal(t, "TaskStatus(5)", TaskStatus(5).String())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
	assert.Equal(t, "", User{}.FullName())
}

func TestUserIdentity(t *testing.T) {
	u := User{Username: "ada", Email: "ada@example.com"}
	assert.Equal(t, "ada", u.Identity(IdentityUsername))
	assert.Equal(t, "ada@example.com", u.Identity(IdentityEmail))

	u.SetIdentity(IdentityEmail, "countess@example.com")
	assert.Equal(t, "countess@example.com", u.Email)
	assert.Equal(t, "ada", u.Username)
}

func TestParseIdentityField(t *testing.T) {
	f, err := ParseIdentityField("")
	require.NoError(t, err)
	assert.Equal(t, IdentityUsername, f)

	f, err = ParseIdentityField(" Email ")
	require.NoError(t, err)
	assert.Equal(t, IdentityEmail, f)

	_, err = ParseIdentityField("phone")
	assert.Error(t, err)
}
