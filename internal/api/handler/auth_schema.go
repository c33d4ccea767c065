package handler

import (
	"strings"
	"time"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

// --- Request / Response types ---

// Required fields are enforced by the registration workflow so every missing
// field produces the same message; the tags here only check format.
type registerRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email" validate:"omitempty,email"`
	Password         string `json:"password"`
	AccountUsername  string `json:"accountUsername"`
	StreetAddress    string `json:"streetAddress"`
	Town             string `json:"town"`
	State            string `json:"state"`
	Pincode          string `json:"pincode"`
	Phone            string `json:"phone"`
	NomineeName      string `json:"nomineeName"`
	SponsorID        string `json:"sponsorId"`
	VigilanceOfficer string `json:"vigilanceOfficer"`
}

// trim strips surrounding whitespace before the format checks run, the same
// way login treats its identifier.
func (r *registerRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.AccountUsername = strings.TrimSpace(r.AccountUsername)
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Password:         r.Password,
		AccountUsername:  r.AccountUsername,
		StreetAddress:    r.StreetAddress,
		Town:             r.Town,
		State:            r.State,
		Pincode:          r.Pincode,
		Phone:            r.Phone,
		NomineeName:      r.NomineeName,
		SponsorID:        r.SponsorID,
		VigilanceOfficer: r.VigilanceOfficer,
	}
}

// loginRequest accepts either an email or an account username as the
// identifier. Email wins when both are sent.
type loginRequest struct {
	Email           string `json:"email"`
	AccountUsername string `json:"accountUsername"`
	Password        string `json:"password"`
	Mode            string `json:"mode" validate:"omitempty,oneof=session token both"`
}

func (r loginRequest) identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.AccountUsername
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginResponse struct {
	Message   string     `json:"message"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type profileResponse struct {
	Message string       `json:"message"`
	Email   string       `json:"email"`
	User    *domain.User `json:"user"`
}

type protectedUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type protectedResponse struct {
	Message string        `json:"message"`
	User    protectedUser `json:"user"`
}

// errorResponse documents the error envelope written by the API error handler.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
