package serializer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/urls"
)

// SprintSerializer maps sprints.
type SprintSerializer struct {
	links  linker
	lookup Lookup
	fields []Field[models.Sprint]
}

// NewSprintSerializer builds a sprint mapper.
func NewSprintSerializer(resolver *urls.Resolver, lookup Lookup) (*SprintSerializer, error) {
	l, err := newLinker(resolver, urls.SprintDetail)
	if err != nil {
		return nil, err
	}
	s := &SprintSerializer{links: l, lookup: lookup}
	s.fields = []Field[models.Sprint]{
		{
			Name: "id",
			Get:  func(sp *models.Sprint, _ *Context) any { return sp.ID },
		},
		{
			Name: "name",
			Get:  func(sp *models.Sprint, _ *Context) any { return sp.Name },
			Set: func(sp *models.Sprint, v any) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				sp.Name = str
				return nil
			},
		},
		{
			Name: "description",
			Get:  func(sp *models.Sprint, _ *Context) any { return sp.Description },
			Set: func(sp *models.Sprint, v any) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				sp.Description = str
				return nil
			},
		},
		{
			Name:     "end",
			Required: true,
			Get: func(sp *models.Sprint, _ *Context) any {
				if sp.End.IsZero() {
					return nil
				}
				return formatDate(null.TimeFrom(sp.End))
			},
			Set: func(sp *models.Sprint, v any) error {
				end, err := asDate(v)
				if err != nil {
					return err
				}
				sp.End = end
				return nil
			},
		},
		{
			Name: "links",
			Get: func(sp *models.Sprint, c *Context) any {
				links := newRepresentation(1)
				links.set("self", s.links.link(c, urls.SprintDetail, strconv.FormatInt(sp.ID, 10)))
				return *links
			},
		},
	}
	return s, nil
}

// ToRepresentation maps a sprint to its wire form.
func (s *SprintSerializer) ToRepresentation(sp models.Sprint, c *Context) Representation {
	return Represent(s.fields, &sp, c)
}

// FromRepresentation validates data and applies it to a copy of instance,
// or to a new sprint when instance is nil.
func (s *SprintSerializer) FromRepresentation(ctx context.Context, data map[string]any, instance *models.Sprint, partial bool) (models.Sprint, error) {
	var sprint models.Sprint
	if instance != nil {
		sprint = *instance
	}

	errs := Populate(s.fields, data, &sprint, partial)
	errs.addConstraints(validate.Struct(sprint), "")

	if _, ok := data["end"]; ok && !errs.Has("end") {
		taken, err := s.lookup.SprintEndTaken(ctx, sprint.End, sprint.ID)
		if err != nil {
			return models.Sprint{}, fmt.Errorf("check sprint end: %w", err)
		}
		if taken {
			errs.add("end", CodeUnique, "sprint with this end already exists.")
		}
	}

	if err := errs.orNil(); err != nil {
		return models.Sprint{}, err
	}
	return sprint, nil
}
