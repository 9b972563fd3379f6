package domain

import "time"

// Session es la representacion local de quien esta autenticado.
type Session struct {
	AccessToken  string           `json:"accessToken,omitempty"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	Role         Role             `json:"role,omitempty"`
	Profile      *UserProfile     `json:"profile,omitempty"`
	Employee     *EmployeeProfile `json:"employee,omitempty"`
	Employer     *EmployerProfile `json:"employer,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.Role == "" &&
		s.Profile == nil && s.Employee == nil && s.Employer == nil
}

// Consistent verifica la regla todo-o-nada entre token, rol y perfil,
// y que el perfil extendido corresponda al rol.
func (s Session) Consistent() bool {
	hasToken := s.AccessToken != ""
	hasRole := s.Role != ""
	hasProfile := s.Profile != nil
	if !(hasToken == hasRole && hasRole == hasProfile) {
		return false
	}
	if s.Employee != nil && s.Employer != nil {
		return false
	}
	switch s.Role {
	case RoleEmployee:
		return s.Employer == nil
	case RoleEmployer:
		return s.Employee == nil
	case "":
		return s.Employee == nil && s.Employer == nil
	default:
		return false
	}
}

// PendingVerification guarda el paso intermedio registro -> verificacion de email.
// Nunca contiene la contraseña: el backend entrega un ticket de un solo uso.
type PendingVerification struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (p PendingVerification) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
