package pg

import (
	"net/http"

	"pgfinder/pg-api/app/respond"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func MyListings(c *gin.Context, d *internal.Deps) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, validators.FromError(err, false), d.Config.Development())
		return
	}

	page, err := d.Listings.ListByOwner(c.Request.Context(), c.GetString("userID"), q.Page, q.Limit)
	if err != nil {
		respond.Error(c, err, d.Config.Development())
		return
	}

	respond.OK(c, http.StatusOK, "", page)
}
