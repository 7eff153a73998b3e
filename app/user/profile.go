package user

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/account"

	"github.com/gin-gonic/gin"
)

func UpdateProfile(c *gin.Context, d *internal.Deps) {
	var in account.ProfileInput
	if err := respond.Bind(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	user, err := d.Accounts.UpdateProfile(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}
