package staff

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
	RoleMember     Role = "member"
)

// Staff is the authenticated principal performing a scan. OrganizationID is the
// organization the scanning device acts for.
type Staff struct {
	ID             string
	Email          string
	DisplayName    string
	OrganizationID string
}

func (s Staff) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

var scanRoles = map[Role]struct{}{
	RoleSuperAdmin: {},
	RoleAdmin:      {},
	RoleStaff:      {},
}

// CanScanTickets reports whether any of the roles is entitled to scan tickets.
func CanScanTickets(roles []Role) bool {
	for _, r := range roles {
		if _, ok := scanRoles[r]; ok {
			return true
		}
	}
	return false
}

// CanActFor reports whether roles granted in one organization reach events of another.
func CanActFor(roles []Role, staffOrganizationID, eventOrganizationID string) bool {
	if staffOrganizationID == eventOrganizationID {
		return true
	}
	for _, r := range roles {
		if r == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// Grant is the answer of the authorization gate for a single call.
type Grant struct {
	Allowed bool
	Roles   []Role
}

func NewGrant(roles []Role) Grant {
	return Grant{
		Allowed: CanScanTickets(roles),
		Roles:   roles,
	}
}

func (g Grant) CoversOrganization(staffOrganizationID, eventOrganizationID string) bool {
	return g.Allowed && CanActFor(g.Roles, staffOrganizationID, eventOrganizationID)
}
