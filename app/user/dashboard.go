// Package user holds the handlers for a signed in user's own account.
package user

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"

	"github.com/gin-gonic/gin"
)

func Dashboard(c *gin.Context, d *internal.Deps) {
	dash, err := d.Accounts.Dashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", dash)
}
