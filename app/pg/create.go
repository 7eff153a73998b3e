package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/listing"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

func Create(c *gin.Context, d *internal.Deps) {
	var in listing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, validators.FromError(err, true), d.Config.Development())
		return
	}

	l, err := d.Listings.Create(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusCreated, "PG listing created successfully", gin.H{"pgListing": l})
}
