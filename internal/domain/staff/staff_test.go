package staff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gatekeeper/internal/domain/staff"
)

func TestCanScanTickets(t *testing.T) {
	assert.True(t, staff.CanScanTickets([]staff.Role{staff.RoleStaff}))
	assert.True(t, staff.CanScanTickets([]staff.Role{staff.RoleMember, staff.RoleAdmin}))
	assert.True(t, staff.CanScanTickets([]staff.Role{staff.RoleSuperAdmin}))
	assert.False(t, staff.CanScanTickets([]staff.Role{staff.RoleMember}))
	assert.False(t, staff.CanScanTickets(nil))
}

func TestCanActFor(t *testing.T) {
	assert.True(t, staff.CanActFor([]staff.Role{staff.RoleStaff}, "org-1", "org-1"))
	assert.False(t, staff.CanActFor([]staff.Role{staff.RoleAdmin}, "org-1", "org-2"))
	assert.True(t, staff.CanActFor([]staff.Role{staff.RoleSuperAdmin}, "org-1", "org-2"))
}

func TestStaff_Name(t *testing.T) {
	assert.Equal(t, "Door Team", staff.Staff{DisplayName: "Door Team", Email: "door@example.com"}.Name())
	assert.Equal(t, "door@example.com", staff.Staff{Email: "door@example.com"}.Name())
}

func TestGrant(t *testing.T) {
	grant := staff.NewGrant([]staff.Role{staff.RoleStaff})
	assert.True(t, grant.Allowed)
	assert.True(t, grant.CoversOrganization("org-1", "org-1"))
	assert.False(t, grant.CoversOrganization("org-1", "org-2"))

	denied := staff.NewGrant([]staff.Role{staff.RoleMember})
	assert.False(t, denied.Allowed)
	assert.False(t, denied.CoversOrganization("org-1", "org-1"))
}
