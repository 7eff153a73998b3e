// Package pg holds the handlers for PG listings.
package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/listing"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

func List(c *gin.Context, d *internal.Deps) {
	var q listing.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, validators.FromError(err, false), d.Config.Development())
		return
	}

	page, err := d.Listings.List(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", page)
}
