package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gatekeeper/internal/domain/staff"
)

type StaffRepo struct {
	db *sqlx.DB
}

func NewStaffRepo(db *sqlx.DB) *StaffRepo {
	return &StaffRepo{db: db}
}

// RolesFor returns the roles held in the organization together with any super_admin
// grant, which is valid everywhere.
func (r *StaffRepo) RolesFor(ctx context.Context, staffID, organizationID string) ([]staff.Role, error) {
	var orgID *uuid.UUID
	if id, err := uuid.Parse(organizationID); err == nil {
		orgID = &id
	}

	var roles []string
	err := r.db.SelectContext(ctx, &roles, `
		SELECT DISTINCT role FROM staff_roles
		WHERE staff_id = $1 AND (organization_id = $2 OR role = $3)
	`, staffID, orgID, string(staff.RoleSuperAdmin))
	if err != nil {
		return nil, fmt.Errorf("could not select roles of staff %s: %w", staffID, err)
	}

	result := make([]staff.Role, 0, len(roles))
	for _, role := range roles {
		result = append(result, staff.Role(role))
	}

	return result, nil
}

func (r *StaffRepo) Grant(ctx context.Context, staffID, organizationID string, role staff.Role) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staff_roles (staff_id, organization_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, staffID, organizationID, string(role))
	if err != nil {
		return fmt.Errorf("could not grant %s to staff %s: %w", role, staffID, err)
	}
	return nil
}
