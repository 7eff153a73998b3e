package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	authsvc "pgfinder/pg-api/internal/auth"

	"github.com/gin-gonic/gin"
)

func Login(c *gin.Context, d *internal.Deps) {
	var in authsvc.LoginInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	session, err := d.Auth.Login(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "Login successful", session)
}
