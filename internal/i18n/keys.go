// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthWalletConnected    = "auth.wallet_connected"

	// Courses
	KeyCourseCreated   = "course.created"
	KeyCourseUpdated   = "course.updated"
	KeyCourseNotFound  = "course.not_found"
	KeyCoursePublished = "course.published"

	// Ownership
	KeyOwnershipMinted    = "ownership.minted"
	KeyOwnershipDuplicate = "ownership.duplicate"
	KeyOwnershipNotFound  = "ownership.not_found"

	// Delegated access
	KeyAccessGranted        = "access.granted"
	KeyAccessRevoked        = "access.revoked"
	KeyAccessDenied         = "access.denied"
	KeyAccessGrantNotFound  = "access.not_found"
	KeyAccessGrantDuplicate = "access.duplicate"

	// Access requests
	KeyRequestSubmitted    = "request.submitted"
	KeyRequestApproved     = "request.approved"
	KeyRequestRejected     = "request.rejected"
	KeyRequestNotFound     = "request.not_found"
	KeyRequestAlreadyFinal = "request.already_final"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationDuration = "validation.invalid_duration"
	KeyValidationWallet   = "validation.invalid_wallet"
)
