package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

type verifyBody struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"otp" binding:"required"`
	TempData string `json:"tempData"`
}

// VerifyOtp completes a registration when the body carries tempData and
// confirms a password reset code otherwise.
func VerifyOtp(c *gin.Context, d *internal.Deps) {
	var body verifyBody
	if err := respond.Bind(c, &body); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	if body.TempData == "" {
		verifyReset(c, d, authsvc.VerifyResetInput{Email: body.Email, Code: body.Code})
		return
	}

	session, err := d.Auth.VerifyRegistrationOtp(c.Request.Context(), authsvc.VerifyRegistrationInput{
		Email:    body.Email,
		Code:     body.Code,
		TempData: body.TempData,
	})
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusCreated, "Email verified and registration successful!", session)
}
