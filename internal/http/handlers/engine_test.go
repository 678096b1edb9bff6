package handlers

import (
	"testing"

	"elyukal/internal/domain"
)

func TestPeso(t *testing.T) {
	cases := map[float64]string{
		0:       "₱0",
		150:     "₱150",
		1500:    "₱1,500",
		1234567: "₱1,234,567",
		99.5:    "₱99.50",
		19.999:  "₱20",
	}
	for in, want := range cases {
		if got := peso(in); got != want {
			t.Errorf("peso(%v) = %q, want %q", in, got, want)
		}
	}
	if got := priceRange(150, 300); got != "₱150 - ₱300" {
		t.Errorf("priceRange = %q", got)
	}
	if got := priceRange(150, 150); got != "₱150" {
		t.Errorf("priceRange equal = %q", got)
	}
}

func TestStarsAcceptsRatingShapes(t *testing.T) {
	if got := stars(domain.Float(4.4)); got != "★★★★☆" {
		t.Errorf("stars(Float) = %q", got)
	}
	if got := stars(5); got != "★★★★★" {
		t.Errorf("stars(int) = %q", got)
	}
	if got := stars(-2.0); got != "☆☆☆☆☆" {
		t.Errorf("stars(negative) = %q", got)
	}
	if got := stars("n/a"); got != "☆☆☆☆☆" {
		t.Errorf("stars(string) = %q", got)
	}
}

func TestLocalPath(t *testing.T) {
	cases := map[string]string{
		"/users?q=a":        "/users?q=a",
		"":                  "/dashboard",
		"//evil.example":    "/dashboard",
		"https://evil.test": "/dashboard",
		`/\evil`:            "/dashboard",
	}
	for in, want := range cases {
		if got := localPath(in, "/dashboard"); got != want {
			t.Errorf("localPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModalBase(t *testing.T) {
	if got := modalBase("/products"); got != "/products?" {
		t.Errorf("got %q", got)
	}
	if got := modalBase("/products?q=bag"); got != "/products?q=bag&" {
		t.Errorf("got %q", got)
	}
}
