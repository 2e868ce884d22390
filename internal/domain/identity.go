package domain

import "strings"

// GuestSentinel is the identity key used when nobody is signed in.
const GuestSentinel = "guest"

const cartKeyPrefix = "cart_"

// Identity is who the current request acts for: a signed-in customer, or a
// guest optionally bound to a server-issued guest session.
type Identity struct {
	UserID  string
	GuestID string
}

// Guest returns a guest identity for the given guest session id (may be empty).
func Guest(guestID string) Identity {
	return Identity{GuestID: strings.TrimSpace(guestID)}
}

// User returns an authenticated identity.
func User(userID string) Identity {
	return Identity{UserID: strings.TrimSpace(userID)}
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Key partitions persisted state: the user id, or the guest sentinel.
func (i Identity) Key() string {
	if i.Authenticated() {
		return i.UserID
	}
	if i.GuestID == "" {
		return GuestSentinel
	}
	return GuestSentinel + "_" + i.GuestID
}

// CartKey is the durable storage key of the identity's cart.
func (i Identity) CartKey() string {
	return cartKeyPrefix + i.Key()
}
