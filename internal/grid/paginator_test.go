package grid

import (
	"errors"
	"net/url"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestPaginator_Next(t *testing.T) {
	var stored *string
	manager := CursorManagerFunc(func(c *string) { stored = c })

	p := NewPaginator(PaginationInfo{
		HasNextPage:     true,
		HasPreviousPage: false,
		EndCursor:       strPtr("abc123"),
	}, manager)

	current, _ := url.Parse("/orders/status/all?sku=X")
	nav, err := p.Next(current)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if nav.Kind != NavPush {
		t.Errorf("Kind = %q, want %q", nav.Kind, NavPush)
	}
	if nav.URL != "/orders/status/all?sku=X&cursor=abc123" {
		t.Errorf("URL = %q, want %q", nav.URL, "/orders/status/all?sku=X&cursor=abc123")
	}
	if stored == nil || *stored != "abc123" {
		t.Errorf("stored cursor = %v, want abc123", stored)
	}
}

func TestPaginator_NextReplacesCursorInPlace(t *testing.T) {
	p := NewPaginator(PaginationInfo{HasNextPage: true, EndCursor: strPtr("n2")}, nil)

	current, _ := url.Parse("/products?cursor=n1&per_page=50&sku=A")
	nav, err := p.Next(current)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	want := "/products?cursor=n2&per_page=50&sku=A"
	if nav.URL != want {
		t.Errorf("URL = %q, want %q", nav.URL, want)
	}
}

func TestPaginator_NextEscapesCursor(t *testing.T) {
	p := NewPaginator(PaginationInfo{HasNextPage: true, EndCursor: strPtr("a+b/c=")}, nil)

	nav, err := p.Next(&url.URL{Path: "/users"})
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	u, err := url.Parse(nav.URL)
	if err != nil {
		t.Fatalf("parse %q: %v", nav.URL, err)
	}
	if got := u.Query().Get(CursorParam); got != "a+b/c=" {
		t.Errorf("cursor round trip = %q, want %q", got, "a+b/c=")
	}
}

func TestPaginator_NextDisabled(t *testing.T) {
	called := false
	p := NewPaginator(PaginationInfo{
		HasNextPage: false,
		EndCursor:   strPtr("ignored"),
	}, CursorManagerFunc(func(*string) { called = true }))

	if p.Controls().NextEnabled {
		t.Error("NextEnabled = true with hasNextPage false")
	}
	if _, err := p.Next(&url.URL{Path: "/orders"}); !errors.Is(err, ErrNextDisabled) {
		t.Errorf("Next() error = %v, want ErrNextDisabled", err)
	}
	if called {
		t.Error("disabled Next wrote a cursor")
	}
}

func TestPaginator_NextEnabledWithoutCursor(t *testing.T) {
	called := false
	stored := strPtr("stale")
	manager := CursorManagerFunc(func(c *string) {
		called = true
		stored = c
	})
	p := NewPaginator(PaginationInfo{HasNextPage: true}, manager)

	if !p.Controls().NextEnabled {
		t.Error("NextEnabled should follow hasNextPage only")
	}
	nav, err := p.Next(&url.URL{Path: "/orders"})
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if nav.URL != "/orders?cursor=" {
		t.Errorf("URL = %q, want /orders?cursor=", nav.URL)
	}
	if !called {
		t.Fatal("SetCursor was not called")
	}
	if stored != nil {
		t.Errorf("stored cursor = %q, want nil", *stored)
	}
}

func TestPaginator_Previous(t *testing.T) {
	p := NewPaginator(PaginationInfo{HasPreviousPage: true}, nil)

	nav, err := p.Previous()
	if err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if nav.Kind != NavHistoryBack {
		t.Errorf("Kind = %q, want %q", nav.Kind, NavHistoryBack)
	}
	if nav.ReloadAfter != PreviousReloadDelay {
		t.Errorf("ReloadAfter = %v, want %v", nav.ReloadAfter, PreviousReloadDelay)
	}
	if nav.URL != "" {
		t.Errorf("URL = %q, want empty (history replay)", nav.URL)
	}

	p = NewPaginator(PaginationInfo{}, nil)
	if _, err := p.Previous(); !errors.Is(err, ErrPreviousDisabled) {
		t.Errorf("Previous() error = %v, want ErrPreviousDisabled", err)
	}
}
