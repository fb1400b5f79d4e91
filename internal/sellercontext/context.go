package sellercontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SellerContextKey is the request context key for the active seller ID.
type SellerContextKey struct{}

// WithSellerID stores the seller ID in the context.
func WithSellerID(ctx context.Context, sellerID snowflake.ID) context.Context {
	return context.WithValue(ctx, SellerContextKey{}, sellerID)
}

// SellerIDFromContext returns the seller ID from context, if set.
func SellerIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(SellerContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}
