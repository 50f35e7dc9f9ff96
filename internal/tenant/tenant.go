// Package tenant resolves the active shop for a request. The selection is
// a plain cookie set by the store-selection step; every tenant-scoped read
// must go through Resolve so the scoping rule lives in one place.
//
// The value is not validated against the authenticated user's permitted
// shops. That gap is inherited from the source system and flagged for the
// platform owner rather than papered over here.
package tenant

import (
	"errors"
	"net/http"
	"strconv"
)

const CookieName = "storepulse_shop"

var ErrNoShopSelected = errors.New("no shop selected")

// Resolve returns the active shop ID. A ?tenant= query parameter overrides
// the cookie for a single request; otherwise the cookie decides. Absence
// of both is ErrNoShopSelected.
func Resolve(r *http.Request) (int64, error) {
	if v := r.URL.Query().Get("tenant"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, ErrNoShopSelected
		}
		return id, nil
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, ErrNoShopSelected
	}
	id, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNoShopSelected
	}
	return id, nil
}

// Cookie returns the selection cookie for a shop.
func Cookie(shopID int64) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    strconv.FormatInt(shopID, 10),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	}
}
