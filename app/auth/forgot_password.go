package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

func ForgotPassword(c *gin.Context, d *internal.Deps) {
	var in authsvc.ForgotPasswordInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	if err := d.Auth.RequestPasswordReset(c.Request.Context(), in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "Password reset OTP sent successfully to your email", nil)
}
