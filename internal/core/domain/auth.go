package domain

import "time"

// Claims is the verified content of a session token.
type Claims struct {
	Subject   string
	Name      string
	Email     string
	FirstName string
	LastName  string
	Roles     Roles
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal returns the acting identity the claims describe.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.Subject, Email: c.Email, Roles: c.Roles}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    string
	Email string
	Roles Roles
}

func (p Principal) HasRole(r Role) bool {
	return p.Roles.Has(r)
}

// CanMutate decides whether caller may update or delete a resource owned by
// ownerID. Admins may mutate anything; everyone else only what they own.
func CanMutate(caller Principal, ownerID string) bool {
	return caller.HasRole(RoleAdmin) || caller.ID == ownerID
}
