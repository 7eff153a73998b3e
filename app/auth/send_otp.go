// Package auth holds the handlers for registration, login and password resets.
package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// SendOtp starts a registration by mailing a code. Nothing about the user is
// stored until the code is verified.
func SendOtp(c *gin.Context, d *internal.Deps) {
	var in authsvc.RegistrationInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	pending, err := d.Auth.RequestRegistrationOtp(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "OTP sent successfully to your email", pending)
}
