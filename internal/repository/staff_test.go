package repository_test

import (
	"github.com/google/uuid"

	"gatekeeper/internal/domain/staff"
	"gatekeeper/internal/repository"
)

func (s *RepositorySuite) TestStaffRepo_RolesFor() {
	repo := repository.NewStaffRepo(s.db)
	orgA, orgB := uuid.NewString(), uuid.NewString()
	staffID := uuid.NewString()
	rootID := uuid.NewString()

	s.Require().NoError(repo.Grant(s.ctx, staffID, orgA, staff.RoleStaff))
	s.Require().NoError(repo.Grant(s.ctx, staffID, orgA, staff.RoleStaff))
	s.Require().NoError(repo.Grant(s.ctx, rootID, orgB, staff.RoleSuperAdmin))

	roles, err := repo.RolesFor(s.ctx, staffID, orgA)
	s.Require().NoError(err)
	s.Equal([]staff.Role{staff.RoleStaff}, roles)

	roles, err = repo.RolesFor(s.ctx, staffID, orgB)
	s.Require().NoError(err)
	s.Empty(roles)

	roles, err = repo.RolesFor(s.ctx, rootID, orgA)
	s.Require().NoError(err)
	s.Equal([]staff.Role{staff.RoleSuperAdmin}, roles)

	roles, err = repo.RolesFor(s.ctx, staffID, "not-an-organization")
	s.Require().NoError(err)
	s.Empty(roles)
}
