// Package serializer converts board records to and from their wire
// representations.
//
// Every record kind is described by a table of fields. Each row names the
// wire field, how to read it from the record and, for writable fields, how
// to coerce an inbound value into the record. Represent and Populate walk
// those tables; the per-kind serializers layer link building, constraint
// checks and reference lookups on top.
package serializer

import (
	"context"
	"time"

	"scrum/internal/models"
)

// Lookup answers the existence and uniqueness questions inbound
// validation needs from the record store.
type Lookup interface {
	SprintExists(ctx context.Context, id int64) (bool, error)
	SprintEndTaken(ctx context.Context, end time.Time, excludeID int64) (bool, error)
	UserByIdentity(ctx context.Context, field models.IdentityField, value string) (models.User, error)
	IdentityTaken(ctx context.Context, field models.IdentityField, value string, excludeID int64) (bool, error)
}
