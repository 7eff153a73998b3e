package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"

	"github.com/gin-gonic/gin"
)

func Me(c *gin.Context, d *internal.Deps) {
	user, err := d.Auth.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", gin.H{"user": user})
}
