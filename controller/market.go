package controller

import (
	"github.com/gin-gonic/gin"

	"go-cultivation/dto"
	"go-cultivation/service"
	"go-cultivation/utils"
)

func (ctl *Controller) GetListings(c *gin.Context) {
	listings, err := ctl.market.Listings(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	views := make([]dto.ListingView, 0, len(listings))
	for _, l := range utils.SafeSlice(listings, service.ListingPageSize) {
		views = append(views, dto.ListingView{
			ListingID:    l.ListingID,
			ItemID:       l.ItemID,
			ItemName:     l.ItemName,
			Quantity:     l.Quantity,
			PricePerItem: l.PricePerItem,
			SellerID:     l.SellerID,
			SellerName:   l.SellerName,
			ListedAt:     l.ListedAt,
		})
	}
	ok(c, "success", dto.GetListings{Listings: views})
}
