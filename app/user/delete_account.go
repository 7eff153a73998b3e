package user

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/account"

	"github.com/gin-gonic/gin"
)

func DeleteAccount(c *gin.Context, d *internal.Deps) {
	var in account.DeleteAccountInput
	if err := respond.Decode(c, &in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	if err := d.Accounts.DeleteAccount(c.Request.Context(), c.GetString("userID"), in); err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "Account deleted successfully", nil)
}
