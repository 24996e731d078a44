package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/services"
)

func TestCartAdd(t *testing.T) {
	w := newWorld(t)
	svc := services.NewCartService()
	c := newCart()

	p, qty, err := svc.Add(bg, actor(w.customer), c, w.salada.ID)
	require.NoError(t, err)
	assert.Equal(t, w.salada.ID, p.ID)
	assert.Equal(t, 1, qty)

	_, qty, err = svc.Add(bg, actor(w.customer), c, w.salada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
	assert.Equal(t, map[uint]int{w.salada.ID: 2}, c.Entries())
}

func TestCartAddRefusals(t *testing.T) {
	w := newWorld(t)
	svc := services.NewCartService()
	c := newCart()

	_, _, err := svc.Add(bg, policies.Actor{}, c, w.salada.ID)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, _, err = svc.Add(bg, actor(w.owner), c, w.salada.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, _, err = svc.Add(bg, actor(w.customer), c, 9999)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	assert.True(t, c.IsEmpty())
}

func TestCartViewDropsMissingProducts(t *testing.T) {
	w := newWorld(t)
	svc := services.NewCartService()
	c := newCart()
	c.Add(w.salada.ID)
	c.Add(w.salada.ID)
	c.Add(w.lasanha.ID)
	c.Add(9999)

	view, err := svc.View(bg, actor(w.customer), c)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, w.lasanha.ID, view.Lines[0].Product.ID, "lines in product id order")
	assert.True(t, decimal.RequireFromString("10.00").Equal(view.Lines[1].Subtotal))
	assert.True(t, decimal.RequireFromString("20.00").Equal(view.Total))
	assert.Len(t, c.Entries(), 3, "view does not rewrite the session")
}

func TestCartViewEmptyAndOwner(t *testing.T) {
	w := newWorld(t)
	svc := services.NewCartService()

	view, err := svc.View(bg, policies.Actor{}, newCart())
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())

	_, err = svc.View(bg, actor(w.owner), newCart())
	assert.ErrorIs(t, err, services.ErrForbidden)
}
