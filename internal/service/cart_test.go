package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {
	r := newTestRepo(t)
	s := &CartService{Repo: r}
	ctx := context.Background()
	user := seedUser(t, r, "cart@example.com")
	p := seedProduct(t, r, "Khakhra", 0, 120, 10)
	q := seedProduct(t, r, "Farsan", 4, 80, 0)

	lines, err := s.AddOrIncrement(ctx, user.ID, p.ID.String())
	require.NoError(t, err, "out of stock products can still be carted")
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(108), lines[0].DiscountPrice)
	assert.Equal(t, "Khakhra", lines[0].Name)

	lines, err = s.AddOrIncrement(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, lines[0].Quantity)

	_, err = s.AddOrIncrement(ctx, user.ID, uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddOrIncrement(ctx, user.ID, "")
	require.ErrorIs(t, err, ErrValidation)

	lines, err = s.DecrementOrRemove(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity)

	lines, err = s.DecrementOrRemove(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = s.DecrementOrRemove(ctx, user.ID, p.ID.String())
	require.NoError(t, err, "absent line is a no-op")
	assert.Empty(t, lines)

	_, err = s.AddOrIncrement(ctx, user.ID, q.ID.String())
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, user.ID, q.ID.String())
	require.NoError(t, err)
	lines, err = s.RemoveCompletely(ctx, user.ID, q.ID.String())
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = s.AddOrIncrement(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, user.ID, q.ID.String())
	require.NoError(t, err)
	require.NoError(t, s.ClearCart(ctx, user.ID))
	lines, err = s.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_DeletedProductOmitted(t *testing.T) {
	r := newTestRepo(t)
	s := &CartService{Repo: r}
	ctx := context.Background()
	user := seedUser(t, r, "cart@example.com")
	p := seedProduct(t, r, "Gone", 1, 10, 0)
	q := seedProduct(t, r, "Stays", 1, 10, 0)

	_, err := s.AddOrIncrement(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, user.ID, q.ID.String())
	require.NoError(t, err)
	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	both, err := s.GetCartAndWishlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, both.Cart, 1)
	assert.Equal(t, q.ID, both.Cart[0].ProductID)
	assert.Empty(t, both.Wishlist)
}

func TestToggleWishlist(t *testing.T) {
	r := newTestRepo(t)
	s := &CartService{Repo: r}
	ctx := context.Background()
	user := seedUser(t, r, "wish@example.com")
	p := seedProduct(t, r, "Chikki", 1, 10, 0)

	ids, added, err := s.ToggleWishlist(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []uuid.UUID{p.ID}, ids)

	ids, added, err = s.ToggleWishlist(ctx, user.ID, p.ID.String())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, ids)
}
