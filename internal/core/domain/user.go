package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User models a registered member. Profile fields are carried but never
// interpreted by the authentication core.
type User struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	AccountUsername  string    `json:"accountUsername"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	StreetAddress    string    `json:"streetAddress,omitempty"`
	Town             string    `json:"town,omitempty"`
	State            string    `json:"state,omitempty"`
	Pincode          string    `json:"pincode,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	NomineeName      string    `json:"nomineeName,omitempty"`
	SponsorID        string    `json:"sponsorId,omitempty"`
	VigilanceOfficer string    `json:"vigilanceOfficer,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the administrator flag.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
