package auth

// Request bodies. The binding tags are shared with gin so a bad request is
// rejected the same way whether it comes through HTTP or a direct call.

type RegistrationInput struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Phone    string `json:"phone" binding:"omitempty,phone10"`
	Role     string `json:"role" binding:"omitempty,oneof=seeker owner user"`
}

type ResendInput struct {
	Email    string `json:"email" binding:"required,email"`
	TempData string `json:"tempData" binding:"required"`
}

type VerifyRegistrationInput struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"otp" binding:"required"`
	TempData string `json:"tempData" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"otp" binding:"required"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=128"`
}

// PendingRegistration is returned after a registration code went out. The
// client echoes TempData back when verifying.
type PendingRegistration struct {
	Email    string `json:"email"`
	TempData string `json:"tempData"`
}
