package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"

	"github.com/gin-gonic/gin"
)

func Fetch(c *gin.Context, d *internal.Deps) {
	l, err := d.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", gin.H{"pgListing": l})
}
