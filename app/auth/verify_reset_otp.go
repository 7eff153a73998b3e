package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

func VerifyResetOtp(c *gin.Context, d *internal.Deps) {
	var in authsvc.VerifyResetInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	verifyReset(c, d, in)
}

func verifyReset(c *gin.Context, d *internal.Deps, in authsvc.VerifyResetInput) {
	if err := d.Auth.VerifyResetOtp(c.Request.Context(), in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "OTP verified successfully. You can now reset your password.", nil)
}
