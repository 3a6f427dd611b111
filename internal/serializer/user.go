package serializer

import (
	"context"
	"fmt"

	"scrum/internal/models"
	"scrum/internal/urls"
)

// UserSerializer maps users. The identity field decides both the wire key
// of the slug and the value used in the user's links.
type UserSerializer struct {
	identity models.IdentityField
	links    linker
	lookup   Lookup
	fields   []Field[models.User]
}

// NewUserSerializer builds a user mapper for the given identity field.
func NewUserSerializer(identity models.IdentityField, resolver *urls.Resolver, lookup Lookup) (*UserSerializer, error) {
	l, err := newLinker(resolver, urls.UserDetail)
	if err != nil {
		return nil, err
	}
	s := &UserSerializer{identity: identity, links: l, lookup: lookup}
	s.fields = []Field[models.User]{
		{
			Name: "id",
			Get:  func(u *models.User, _ *Context) any { return u.ID },
		},
		{
			Name:     string(identity),
			Required: true,
			Get:      func(u *models.User, _ *Context) any { return u.Identity(identity) },
			Set: func(u *models.User, v any) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				u.SetIdentity(identity, str)
				return nil
			},
		},
		{
			Name: "full_name",
			Get:  func(u *models.User, _ *Context) any { return u.FullName() },
		},
		{
			Name: "is_active",
			Get:  func(u *models.User, _ *Context) any { return u.IsActive },
			Set: func(u *models.User, v any) error {
				b, err := asBool(v)
				if err != nil {
					return err
				}
				u.IsActive = b
				return nil
			},
		},
		{
			Name: "links",
			Get:  s.userLinks,
		},
	}
	return s, nil
}

// IdentityField returns the configured slug field.
func (s *UserSerializer) IdentityField() models.IdentityField {
	return s.identity
}

func (s *UserSerializer) userLinks(u *models.User, c *Context) any {
	links := newRepresentation(1)
	var self any
	if slug := u.Identity(s.identity); slug != "" {
		self = s.links.link(c, urls.UserDetail, slug)
	}
	links.set("self", self)
	return *links
}

// ToRepresentation maps a user to its wire form.
func (s *UserSerializer) ToRepresentation(u models.User, c *Context) Representation {
	return Represent(s.fields, &u, c)
}

// FromRepresentation validates data and applies it to a copy of instance,
// or to a new active user when instance is nil.
func (s *UserSerializer) FromRepresentation(ctx context.Context, data map[string]any, instance *models.User, partial bool) (models.User, error) {
	user := models.User{IsActive: true}
	if instance != nil {
		user = *instance
	}

	name := string(s.identity)
	errs := Populate(s.fields, data, &user, partial)
	if !errs.Has(name) {
		if err := validate.Var(user.Identity(s.identity), identityTag(s.identity)); err != nil {
			errs.addConstraints(err, name)
		}
	}
	if _, ok := data[name]; ok && !errs.Has(name) {
		taken, err := s.lookup.IdentityTaken(ctx, s.identity, user.Identity(s.identity), user.ID)
		if err != nil {
			return models.User{}, fmt.Errorf("check %s: %w", name, err)
		}
		if taken {
			errs.add(name, CodeUnique, fmt.Sprintf("A user with that %s already exists.", name))
		}
	}

	if err := errs.orNil(); err != nil {
		return models.User{}, err
	}
	return user, nil
}
