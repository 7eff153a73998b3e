package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

func ResendOtp(c *gin.Context, d *internal.Deps) {
	var in authsvc.ResendInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	pending, err := d.Auth.ResendRegistrationOtp(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "New OTP sent successfully to your email", pending)
}
