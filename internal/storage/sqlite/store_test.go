package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "scrum.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestUsersCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateUser(ctx, models.User{Username: "ada", Email: "ada@example.com", FirstName: "Ada", IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, ada.ID)
	assert.True(t, ada.IsActive)

	_, err = store.CreateUser(ctx, models.User{Username: "grace", IsActive: true})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, models.User{Username: "linus", IsActive: false})
	require.NoError(t, err)

	found, err := store.UserByIdentity(ctx, models.IdentityEmail, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada, found)

	_, err = store.UserByIdentity(ctx, models.IdentityEmail, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.UserByIdentity(ctx, models.IdentityUsername, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	taken, err := store.IdentityTaken(ctx, models.IdentityUsername, "ada", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = store.IdentityTaken(ctx, models.IdentityUsername, "ada", ada.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	users, err := store.ListUsers(ctx, models.IdentityUsername)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"ada", "grace", "linus"}, []string{users[0].Username, users[1].Username, users[2].Username})

	ada.LastName = "Lovelace"
	ada.IsActive = false
	updated, err := store.UpdateUser(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName())
	assert.False(t, updated.IsActive)

	require.NoError(t, store.DeleteUser(ctx, ada.ID))
	_, err = store.GetUser(ctx, ada.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteUser(ctx, ada.ID), storage.ErrNotFound)

	_, err = store.UpdateUser(ctx, models.User{ID: 999, Username: "ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsersUniqueIdentity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, models.User{Username: "ada"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, models.User{Username: "ada"})
	assert.Error(t, err)

	// empty emails do not collide
	_, err = store.CreateUser(ctx, models.User{Username: "grace"})
	assert.NoError(t, err)
}

func TestSprintsCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	second, err := store.CreateSprint(ctx, models.Sprint{Name: "Two", End: day("2024-02-14")})
	require.NoError(t, err)
	first, err := store.CreateSprint(ctx, models.Sprint{Name: "One", Description: "kickoff", End: day("2024-01-31")})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", first.End.Format(models.DateLayout))

	sprints, err := store.ListSprints(ctx)
	require.NoError(t, err)
	require.Len(t, sprints, 2)
	assert.Equal(t, first.ID, sprints[0].ID)
	assert.Equal(t, second.ID, sprints[1].ID)

	exists, err := store.SprintExists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.SprintExists(ctx, 404)
	require.NoError(t, err)
	assert.False(t, exists)

	taken, err := store.SprintEndTaken(ctx, day("2024-01-31"), 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = store.SprintEndTaken(ctx, day("2024-01-31"), first.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = store.CreateSprint(ctx, models.Sprint{End: day("2024-01-31")})
	assert.Error(t, err)

	first.Description = "kickoff, revised"
	first.End = day("2024-02-01")
	updated, err := store.UpdateSprint(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "kickoff, revised", updated.Description)
	assert.True(t, updated.End.Equal(day("2024-02-01")))

	require.NoError(t, store.DeleteSprint(ctx, second.ID))
	_, err = store.GetSprint(ctx, second.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTasksCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sprint, err := store.CreateSprint(ctx, models.Sprint{Name: "One", End: day("2024-01-31")})
	require.NoError(t, err)
	ada, err := store.CreateUser(ctx, models.User{Username: "ada", IsActive: true})
	require.NoError(t, err)

	task, err := store.CreateTask(ctx, models.Task{
		Name:     "Fix bug",
		SprintID: null.Int64From(sprint.ID),
		Status:   models.StatusInProgress,
		Order:    2,
		Due:      null.TimeFrom(day("2024-01-20")),
	})
	require.NoError(t, err)
	assert.Equal(t, null.Int64From(sprint.ID), task.SprintID)
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, int64(2), task.Order)
	assert.True(t, task.Due.Valid)
	assert.Equal(t, "2024-01-20", task.Due.Time.Format(models.DateLayout))
	assert.False(t, task.Started.Valid)
	assert.Nil(t, task.Assigned)

	backlog, err := store.CreateTask(ctx, models.Task{Name: "Backlog item"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, backlog.Status)
	assert.False(t, backlog.SprintID.Valid)

	all, err := store.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inSprint, err := store.ListTasks(ctx, TaskFilter{SprintID: null.Int64From(sprint.ID)})
	require.NoError(t, err)
	require.Len(t, inSprint, 1)
	assert.Equal(t, task.ID, inSprint[0].ID)

	assigned, err := store.AssignTask(ctx, task.ID, null.Int64From(ada.ID))
	require.NoError(t, err)
	require.NotNil(t, assigned.Assigned)
	assert.Equal(t, "ada", assigned.Assigned.Username)

	assigned.Status = models.StatusDone
	assigned.Completed = null.TimeFrom(day("2024-01-25"))
	updated, err := store.UpdateTask(ctx, assigned)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.True(t, updated.Completed.Valid)
	require.NotNil(t, updated.Assigned)

	require.NoError(t, store.DeleteUser(ctx, ada.ID))
	afterUser, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, afterUser.Assigned)

	require.NoError(t, store.DeleteSprint(ctx, sprint.ID))
	afterSprint, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, afterSprint.SprintID.Valid)

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	_, err = store.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.AssignTask(ctx, task.ID, null.Int64{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTaskRejectsUnknownSprint(t *testing.T) {
	store := openTestStore(t)

	_, err := store.CreateTask(context.Background(), models.Task{Name: "Orphan", SprintID: null.Int64From(77)})
	assert.Error(t, err)
}
