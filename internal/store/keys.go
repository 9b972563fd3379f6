package store

// Identificadores fijos de claves en el almacenamiento.
const (
	KeyUser                = "user"
	KeyToken               = "token"
	KeyRefreshToken        = "refreshToken"
	KeyAccountType         = "accountType"
	KeyEmployeeData        = "employeeData"
	KeyEmployerData        = "employerData"
	KeySavedJobs           = "savedJobs"
	KeyPendingVerification = "pendingVerification"
	KeyStorageSchema       = "storageSchema"
)

// SessionKeys es el conjunto que el logout elimina, incluidos los caches por rol.
var SessionKeys = []string{
	KeyToken,
	KeyRefreshToken,
	KeyUser,
	KeyAccountType,
	KeyEmployeeData,
	KeyEmployerData,
	KeySavedJobs,
}
