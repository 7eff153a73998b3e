package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/listing"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

func Search(c *gin.Context, d *internal.Deps) {
	var q listing.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, validators.FromError(err, false), d.Config.Development())
		return
	}

	listings, err := d.Listings.Search(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", gin.H{"pgListings": listings})
}
