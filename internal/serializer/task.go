package serializer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/storage"
	"scrum/internal/urls"
)

// TaskSerializer maps tasks. The assigned user is written out by identity
// value and never read back from inbound data.
type TaskSerializer struct {
	identity models.IdentityField
	links    linker
	lookup   Lookup
	fields   []Field[models.Task]
}

// NewTaskSerializer builds a task mapper.
func NewTaskSerializer(identity models.IdentityField, resolver *urls.Resolver, lookup Lookup) (*TaskSerializer, error) {
	l, err := newLinker(resolver, urls.TaskDetail, urls.SprintDetail, urls.UserDetail)
	if err != nil {
		return nil, err
	}
	s := &TaskSerializer{identity: identity, links: l, lookup: lookup}
	s.fields = []Field[models.Task]{
		{
			Name: "id",
			Get:  func(t *models.Task, _ *Context) any { return t.ID },
		},
		{
			Name:     "name",
			Required: true,
			Get:      func(t *models.Task, _ *Context) any { return t.Name },
			Set: func(t *models.Task, v any) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				t.Name = str
				return nil
			},
		},
		{
			Name: "description",
			Get:  func(t *models.Task, _ *Context) any { return t.Description },
			Set: func(t *models.Task, v any) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				t.Description = str
				return nil
			},
		},
		{
			Name: "sprint",
			Get:  func(t *models.Task, _ *Context) any { return formatID(t.SprintID) },
			Set: func(t *models.Task, v any) error {
				id, err := asPrimaryKey(v)
				if err != nil {
					return err
				}
				t.SprintID = id
				return nil
			},
		},
		{
			Name: "status",
			Get:  func(t *models.Task, _ *Context) any { return int(t.Status) },
			Set: func(t *models.Task, v any) error {
				code, err := asInt(v)
				if err != nil {
					if err == errNull {
						return err
					}
					return &issue{code: CodeInvalidChoice, message: fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(v))}
				}
				status := models.TaskStatus(code)
				if !status.Valid() {
					return &issue{code: CodeInvalidChoice, message: fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(v))}
				}
				t.Status = status
				return nil
			},
		},
		{
			Name: "status_display",
			Get:  func(t *models.Task, _ *Context) any { return t.StatusDisplay() },
		},
		{
			Name: "order",
			Get:  func(t *models.Task, _ *Context) any { return t.Order },
			Set: func(t *models.Task, v any) error {
				n, err := asBoundedInt(v)
				if err != nil {
					return err
				}
				t.Order = n
				return nil
			},
		},
		{
			Name: "assigned",
			Get: func(t *models.Task, _ *Context) any {
				return s.assignedIdentity(t)
			},
		},
		dateField("started", func(t *models.Task) *null.Time { return &t.Started }),
		dateField("due", func(t *models.Task) *null.Time { return &t.Due }),
		dateField("completed", func(t *models.Task) *null.Time { return &t.Completed }),
		{
			Name: "links",
			Get:  s.taskLinks,
		},
	}
	return s, nil
}

func dateField(name string, ref func(*models.Task) *null.Time) Field[models.Task] {
	return Field[models.Task]{
		Name: name,
		Get:  func(t *models.Task, _ *Context) any { return formatDate(*ref(t)) },
		Set: func(t *models.Task, v any) error {
			d, err := asNullDate(v)
			if err != nil {
				return err
			}
			*ref(t) = d
			return nil
		},
	}
}

func (s *TaskSerializer) taskLinks(t *models.Task, c *Context) any {
	links := newRepresentation(3)
	links.set("self", s.links.link(c, urls.TaskDetail, strconv.FormatInt(t.ID, 10)))

	var sprint any
	if t.SprintID.Valid {
		sprint = s.links.link(c, urls.SprintDetail, strconv.FormatInt(t.SprintID.Int64, 10))
	}
	links.set("sprint", sprint)

	var assigned any
	if slug, ok := s.assignedIdentity(t).(string); ok {
		assigned = s.links.link(c, urls.UserDetail, slug)
	}
	links.set("assigned", assigned)
	return *links
}

// assignedIdentity is nil when nobody is assigned or the assignee has no
// value for the identity field.
func (s *TaskSerializer) assignedIdentity(t *models.Task) any {
	if t.Assigned == nil {
		return nil
	}
	if slug := t.Assigned.Identity(s.identity); slug != "" {
		return slug
	}
	return nil
}

// ToRepresentation maps a task to its wire form.
func (s *TaskSerializer) ToRepresentation(t models.Task, c *Context) Representation {
	return Represent(s.fields, &t, c)
}

// FromRepresentation validates data and applies it to a copy of instance,
// or to a new task when instance is nil. A sprint reference that does not
// resolve fails with a does_not_exist error on the sprint field.
func (s *TaskSerializer) FromRepresentation(ctx context.Context, data map[string]any, instance *models.Task, partial bool) (models.Task, error) {
	task := models.Task{Status: models.StatusNotStarted}
	if instance != nil {
		task = *instance
	}

	errs := Populate(s.fields, data, &task, partial)
	errs.addConstraints(validate.Struct(task), "")

	if _, ok := data["sprint"]; ok && task.SprintID.Valid && !errs.Has("sprint") {
		exists, err := s.lookup.SprintExists(ctx, task.SprintID.Int64)
		if err != nil {
			return models.Task{}, fmt.Errorf("check sprint: %w", err)
		}
		if !exists {
			errs.add("sprint", CodeDoesNotExist, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", task.SprintID.Int64))
		}
	}

	if err := errs.orNil(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ResolveAssigned turns an identity value into the user it names. A nil
// value clears the assignment and returns a nil user.
func (s *TaskSerializer) ResolveAssigned(ctx context.Context, value any) (*models.User, error) {
	if value == nil {
		return nil, nil
	}

	errs := &ValidationError{}
	slug, ok := value.(string)
	if !ok {
		errs.add("assigned", CodeInvalid, "Invalid value.")
		return nil, errs
	}

	user, err := s.lookup.UserByIdentity(ctx, s.identity, slug)
	if errors.Is(err, storage.ErrNotFound) {
		errs.add("assigned", CodeDoesNotExist, fmt.Sprintf("Object with %s=%s does not exist.", s.identity, slug))
		return nil, errs
	}
	if err != nil {
		return nil, fmt.Errorf("resolve assigned: %w", err)
	}
	return &user, nil
}
