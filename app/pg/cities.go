package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"

	"github.com/gin-gonic/gin"
)

func Cities(c *gin.Context, d *internal.Deps) {
	cities, err := d.Listings.Cities(c.Request.Context())
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", gin.H{"cities": cities})
}
