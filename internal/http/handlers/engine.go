package handlers

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"slices"
	"strings"

	"elyukal/internal/domain"

	html "github.com/gofiber/template/html/v2"
)

// NewEngine loads the screen templates with the helpers they use. reload
// re-parses templates on every render (development).
func NewEngine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFuncMap(map[string]interface{}{
		"peso":        peso,
		"priceRange":  priceRange,
		"date":        formatDate,
		"datetime":    formatDateTime,
		"rating":      func(v any) string { return fmt.Sprintf("%.1f", toFloat(v)) },
		"stars":       stars,
		"mapEmbed":    mapEmbed,
		"mapLink":     mapLink,
		"contains":    slices.Contains[[]string, string],
		"statusLabel": func(s string) string { return domain.ApplicationStatus(s).Label() },
		"add":         func(a, b int) int { return a + b },
		"upper":       strings.ToUpper,
		"title":       titleCase,
		"pathEscape":  url.PathEscape,
	})
	return engine
}

func peso(v float64) string {
	whole := int64(math.Floor(v))
	cents := int64(math.Round((v - float64(whole)) * 100))
	if cents == 100 {
		whole, cents = whole+1, 0
	}
	s := fmt.Sprint(whole)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if cents == 0 {
		return "₱" + b.String()
	}
	return fmt.Sprintf("₱%s.%02d", b.String(), cents)
}

func priceRange(lo, hi float64) string {
	if hi <= lo {
		return peso(lo)
	}
	return peso(lo) + " - " + peso(hi)
}

func formatDate(s string) string {
	t := domain.ParseTime(s)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(s string) string {
	t := domain.ParseTime(s)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// toFloat accepts the numeric shapes ratings arrive in: float64 stats,
// domain.Float averages and int review scores.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case domain.Float:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// stars renders a 0..5 rating as filled and empty stars.
func stars(v any) string {
	n := int(math.Round(toFloat(v)))
	n = min(max(n, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func mapEmbed(lat, lng float64) template.URL {
	const d = 0.005
	return template.URL(fmt.Sprintf(
		"https://www.openstreetmap.org/export/embed.html?bbox=%f%%2C%f%%2C%f%%2C%f&layer=mapnik&marker=%f%%2C%f",
		lng-d, lat-d, lng+d, lat+d, lat, lng))
}

func mapLink(lat, lng float64) template.URL {
	return template.URL(fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f#map=17/%f/%f", lat, lng, lat, lng))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
