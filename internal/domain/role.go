package domain

// Roles carried in access tokens.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// CallerContext identifies who is performing an operation. Handlers build it
// from the verified access token and pass it to every mutating service call.
type CallerContext struct {
	ID      int64 `json:"id"`
	IsAdmin bool  `json:"isAdmin"`
}

// NewCaller builds a CallerContext from a user ID and role.
func NewCaller(id int64, role string) CallerContext {
	return CallerContext{ID: id, IsAdmin: role == RoleAdmin}
}

// CanModify reports whether the caller may change a resource owned by
// ownerID: owners and admins can.
func (c CallerContext) CanModify(ownerID int64) bool {
	return c.IsAdmin || c.ID == ownerID
}
