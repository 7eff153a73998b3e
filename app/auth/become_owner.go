package auth

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"

	"github.com/gin-gonic/gin"
)

func BecomeOwner(c *gin.Context, d *internal.Deps) {
	user, err := d.Auth.BecomeOwner(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "Successfully became an owner", gin.H{"user": user})
}
