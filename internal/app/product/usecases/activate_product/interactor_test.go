package activate_product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/testutil"
)

func TestActivateProduct(t *testing.T) {
	h := testutil.NewHarness()
	uc := NewInteractor(h.Store, h.Writer, h.Clock)
	ctx := context.Background()

	p := testutil.NewProductBuilder("p1").WithStatus(domain.StatusDraft).Put(h.Store)

	err := uc.Execute(ctx, &Request{Actor: testutil.Admin(), ProductID: p.ID})
	require.NoError(t, err)

	got := h.Product(t, p.ID)
	assert.Equal(t, domain.StatusActive, got.Status())
	require.NotNil(t, got.PublishedAt())
	assert.Equal(t, int64(1), h.Count(t, domain.StatusActive))
	assert.Len(t, h.Events(t, "product.status_changed", ""), 1)

	t.Run("already active is a no-op", func(t *testing.T) {
		require.NoError(t, uc.Execute(ctx, &Request{Actor: testutil.Admin(), ProductID: p.ID}))
		assert.Len(t, h.Events(t, "product.status_changed", ""), 1)
		assert.Equal(t, int64(1), h.Count(t, domain.StatusActive))
	})

	t.Run("not found", func(t *testing.T) {
		err := uc.Execute(ctx, &Request{Actor: testutil.Admin(), ProductID: "nope"})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		err := uc.Execute(ctx, &Request{ProductID: p.ID})
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}
