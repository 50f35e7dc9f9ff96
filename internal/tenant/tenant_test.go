package tenant

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveFromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(Cookie(5))

	id, err := Resolve(r)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 5 {
		t.Errorf("id = %d, want 5", id)
	}
}

func TestResolveQueryOverridesCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?tenant=9", nil)
	r.AddCookie(Cookie(5))

	id, err := Resolve(r)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 9 {
		t.Errorf("id = %d, want query override 9", id)
	}
}

func TestResolveMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := Resolve(r); !errors.Is(err, ErrNoShopSelected) {
		t.Errorf("resolve = %v, want ErrNoShopSelected", err)
	}
}

func TestResolveInvalidValues(t *testing.T) {
	for _, target := range []string{"/?tenant=abc", "/?tenant=0", "/?tenant=-3"} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		if _, err := Resolve(r); !errors.Is(err, ErrNoShopSelected) {
			t.Errorf("Resolve(%s) = %v, want ErrNoShopSelected", target, err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "junk"})
	if _, err := Resolve(r); !errors.Is(err, ErrNoShopSelected) {
		t.Errorf("junk cookie = %v, want ErrNoShopSelected", err)
	}
}
