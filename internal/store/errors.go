// Package store holds the client-side state shared by the views: the signed-in
// session, the favorites list and the reviews of the title being viewed.
package store

import (
	"errors"

	"github.com/naveenspark/moviedash/pkg/client"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// ErrAuthRequired is returned by mutations attempted without a session.
var ErrAuthRequired = errors.New("log in first")

// ErrBusy is returned by FavoritesStore.BeginToggle while another favorites
// change is still being saved.
var ErrBusy = errors.New("still saving favorites")

// Message turns a store error into text for the status line: validation
// problems and backend messages verbatim, fallback for everything else.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrAuthRequired) {
		return ErrAuthRequired.Error()
	}
	if errors.Is(err, ErrBusy) {
		return ErrBusy.Error()
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return client.Message(err, fallback)
}
