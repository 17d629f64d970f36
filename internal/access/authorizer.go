// Package access decides whether a signed-in user may touch a stored record.
//
// Ownership is resolved through the data hierarchy: a client belongs to a user,
// projects and invoices belong to a client, tasks belong to a project.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"crm-backend/internal/models"
)

type Kind string

const (
	KindClient  Kind = "client"
	KindProject Kind = "project"
	KindTask    Kind = "task"
	KindInvoice Kind = "invoice"
)

// OwnerLookup resolves the owning user of a record. Implementations return
// models.ErrNotFound when the record does not exist.
type OwnerLookup interface {
	ClientOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ProjectOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	TaskOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	InvoiceOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type Authorizer struct {
	owners OwnerLookup
}

func NewAuthorizer(owners OwnerLookup) *Authorizer {
	return &Authorizer{owners: owners}
}

// Authorize returns nil when userID owns the record, models.ErrNotFound when
// the record does not exist and models.ErrForbidden otherwise.
func (a *Authorizer) Authorize(ctx context.Context, userID uuid.UUID, kind Kind, id uuid.UUID) error {
	if userID == uuid.Nil {
		return models.ErrUnauthorized
	}

	var (
		owner uuid.UUID
		err   error
	)
	switch kind {
	case KindClient:
		owner, err = a.owners.ClientOwner(ctx, id)
	case KindProject:
		owner, err = a.owners.ProjectOwner(ctx, id)
	case KindTask:
		owner, err = a.owners.TaskOwner(ctx, id)
	case KindInvoice:
		owner, err = a.owners.InvoiceOwner(ctx, id)
	default:
		return fmt.Errorf("unknown resource kind %q", kind)
	}

	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
		}
		return fmt.Errorf("resolve %s owner: %w", kind, err)
	}

	if owner != userID {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrForbidden)
	}

	return nil
}
