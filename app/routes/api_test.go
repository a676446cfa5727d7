package routes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishivikram/vastra/app/routes"
	"github.com/rishivikram/vastra/pkg/router"
	"github.com/rishivikram/vastra/pkg/ws"
)

// Route registration must not need a live database: route:list builds the
// table without connecting, so controller construction has to stay free of
// collection lookups.
func TestRegisterAPIWithoutDatabase(t *testing.T) {
	r := router.New()

	require.NotPanics(t, func() {
		routes.RegisterAPI(r, ws.NewHub())
	})

	table := r.Routes()
	assert.NotEmpty(t, table)
	for _, name := range []string{"order.checkout", "cart.add", "product.rating", "user.wishlist"} {
		assert.Contains(t, table, name)
	}
}
