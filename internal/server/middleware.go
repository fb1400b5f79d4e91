package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
)

const (
	HeaderSeller         = "X-Seller-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// SellerRequired scopes the request to the seller named in X-Seller-ID.
func SellerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderSeller))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		sellerID, err := snowflake.ParseString(raw)
		if err != nil || sellerID == 0 {
			AbortWithError(c, newValidationError("seller_id", "invalid_seller", "invalid seller id"))
			return
		}

		c.Request = c.Request.WithContext(sellercontext.WithSellerID(c.Request.Context(), sellerID))
		c.Next()
	}
}
