package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

// Update applies a partial document. Fields left out keep their stored value.
func Update(c *gin.Context, d *internal.Deps) {
	patch, err := c.GetRawData()
	if err != nil {
		respond.Error(c, validators.FromError(err, true), d.Config.Development())
		return
	}

	l, err := d.Listings.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), patch)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "PG listing updated successfully", gin.H{"pgListing": l})
}
