package domain

import "time"

// AuthResponse es el contrato de respuesta de los endpoints de autenticacion.
// Flag=false es un rechazo normal (credenciales invalidas), no un error.
type AuthResponse struct {
	Flag               bool             `json:"flag"`
	Message            string           `json:"message"`
	Token              string           `json:"token,omitempty"`
	RefreshToken       string           `json:"refreshToken,omitempty"`
	User               *UserProfile     `json:"user,omitempty"`
	EmployeeData       *EmployeeProfile `json:"employeeData,omitempty"`
	EmployerData       *EmployerProfile `json:"employerData,omitempty"`
	VerificationTicket string           `json:"verificationTicket,omitempty"`
	TicketExpiresAt    *time.Time       `json:"ticketExpiresAt,omitempty"`
}

type RegisterEmployeeInput struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FullName    string   `json:"fullName"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Location    string   `json:"location,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

type RegisterEmployerInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Location    string `json:"location,omitempty"`
	CompanyName string `json:"companyName"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
}

type SavedJob struct {
	ID      string    `json:"id"`
	JobID   string    `json:"jobId"`
	Title   string    `json:"title"`
	Company string    `json:"company,omitempty"`
	SavedAt time.Time `json:"savedAt"`
}

type SavedJobsResponse struct {
	Flag    bool       `json:"flag"`
	Message string     `json:"message"`
	Data    []SavedJob `json:"data"`
}
