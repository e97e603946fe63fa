package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naveenspark/moviedash/pkg/client"
)

type harness struct {
	backend *fakeBackend
	api     *client.Client
	tokens  *MemoryTokenStore
	auth    *AuthStore
	favs    *FavoritesStore
	reviews *ReviewsStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := newFakeBackend(t)
	api := b.client()
	h := &harness{
		backend: b,
		api:     api,
		tokens:  &MemoryTokenStore{},
		favs:    NewFavoritesStore(api, nil),
		reviews: NewReviewsStore(api, nil),
	}
	h.auth = NewAuthStore(api, h.tokens, nil)
	h.auth.Subscribe(h.favs.SessionChanged)
	h.auth.Subscribe(h.reviews.SessionChanged)
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.auth.Login(context.Background(), "alice@example.com", "secret1"))
}
