package domain

import (
	"strings"
)

// Role determina el perfil extendido y las rutas de API que aplican al usuario.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleEmployer Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleEmployer
}

// ParseRole normaliza el valor persistido de accountType.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Location    string `json:"location,omitempty"`
}

type EmployeeProfile struct {
	Preferences          []string `json:"preferences,omitempty"`
	JobAlerts            bool     `json:"jobAlerts"`
	MessageNotifications bool     `json:"messageNotifications"`
}

type EmployerProfile struct {
	CompanyName              string `json:"companyName"`
	Description              string `json:"description,omitempty"`
	Industry                 string `json:"industry,omitempty"`
	Size                     string `json:"size,omitempty"`
	MessageNotifications     bool   `json:"messageNotifications"`
	ApplicationNotifications bool   `json:"applicationNotifications"`
}

// PlaceholderUserID identifica perfiles sintetizados cuando el backend omite user.
const PlaceholderUserID = "temp-id"

// PlaceholderProfile arma un perfil minimo a partir del email.
func PlaceholderProfile(email string) UserProfile {
	email = strings.TrimSpace(email)
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return UserProfile{
		ID:          PlaceholderUserID,
		Email:       email,
		DisplayName: name,
	}
}
