package authorization

import (
	"context"
	"fmt"

	"gatekeeper/internal/domain/staff"
)

type RolesRepository interface {
	// RolesFor returns the roles the staff member holds in the organization, plus any
	// global role.
	RolesFor(ctx context.Context, staffID, organizationID string) ([]staff.Role, error)
}

// Gate answers whether a staff member may scan tickets. Roles are read on every call
// so revocations apply immediately.
type Gate struct {
	roles RolesRepository
}

func NewGate(roles RolesRepository) *Gate {
	if roles == nil {
		panic("missing roles repository")
	}
	return &Gate{roles: roles}
}

func (g *Gate) AuthorizeScan(ctx context.Context, s staff.Staff) (staff.Grant, error) {
	if s.ID == "" {
		return staff.Grant{}, nil
	}

	roles, err := g.roles.RolesFor(ctx, s.ID, s.OrganizationID)
	if err != nil {
		return staff.Grant{}, fmt.Errorf("could not load roles of staff %s: %w", s.ID, err)
	}

	return staff.NewGrant(roles), nil
}
