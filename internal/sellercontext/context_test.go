package sellercontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestSellerIDRoundTrip(t *testing.T) {
	ctx := WithSellerID(context.Background(), snowflake.ID(42))

	id, ok := SellerIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, snowflake.ID(42), id)
}

func TestSellerIDMissingOrZero(t *testing.T) {
	_, ok := SellerIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = SellerIDFromContext(WithSellerID(context.Background(), 0))
	assert.False(t, ok)

	_, ok = SellerIDFromContext(context.WithValue(context.Background(), SellerContextKey{}, "not-a-number"))
	assert.False(t, ok)
}
