package services

import (
	"time"

	"elyukal/internal/domain"
	"elyukal/internal/listing"
)

func byDate[T any](f func(T) string) listing.SortKey[T] {
	return listing.ByTime(func(v T) time.Time { return domain.ParseTime(f(v)) })
}

var ProductScreen = listing.Spec[domain.Product]{
	SearchIn: func(p domain.Product) []string { return []string{p.Name, p.Description} },
	Facet:    func(p domain.Product) string { return p.Category },
	Sorts: map[string]listing.SortKey[domain.Product]{
		"name":       listing.ByText(func(p domain.Product) string { return p.Name }),
		"category":   listing.ByText(func(p domain.Product) string { return p.Category }),
		"store":      listing.ByText(domain.Product.StoreName),
		"town":       listing.ByText(func(p domain.Product) string { return p.Town }),
		"price":      listing.ByNumber(func(p domain.Product) float64 { return p.PriceMin }),
		"rating":     listing.ByNumber(func(p domain.Product) float64 { return float64(p.AverageRating) }),
		"views":      listing.ByNumber(func(p domain.Product) float64 { return float64(p.Views) }),
		"created_at": byDate(func(p domain.Product) string { return p.CreatedAt }),
	},
	DefaultSort: "name",
	DefaultDir:  listing.Asc,
}

// ArchivedProductScreen shows the most recently archived first.
var ArchivedProductScreen = func() listing.Spec[domain.Product] {
	s := ProductScreen
	s.Sorts = map[string]listing.SortKey[domain.Product]{
		"name":        ProductScreen.Sorts["name"],
		"category":    ProductScreen.Sorts["category"],
		"store":       ProductScreen.Sorts["store"],
		"archived_at": byDate(func(p domain.Product) string { return p.ArchivedAt }),
	}
	s.DefaultSort, s.DefaultDir = "archived_at", listing.Desc
	return s
}()

var StoreScreen = listing.Spec[domain.Store]{
	SearchIn: func(s domain.Store) []string { return []string{s.Name, s.Description} },
	Facet:    func(s domain.Store) string { return s.Type },
	Sorts: map[string]listing.SortKey[domain.Store]{
		"name":   listing.ByText(func(s domain.Store) string { return s.Name }),
		"type":   listing.ByText(func(s domain.Store) string { return s.Type }),
		"town":   listing.ByText(func(s domain.Store) string { return s.Town }),
		"rating": listing.ByNumber(func(s domain.Store) float64 { return s.Rating }),
	},
	DefaultSort: "name",
	DefaultDir:  listing.Asc,
}

var UserScreen = listing.Spec[domain.User]{
	SearchIn: func(u domain.User) []string { return []string{u.FullName(), u.Email} },
	Sorts: map[string]listing.SortKey[domain.User]{
		"name":       listing.ByText(domain.User.FullName),
		"email":      listing.ByText(func(u domain.User) string { return u.Email }),
		"created_at": byDate(func(u domain.User) string { return u.CreatedAt }),
	},
	DefaultSort: "name",
	DefaultDir:  listing.Asc,
}

var ActivityScreen = listing.Spec[domain.Activity]{
	SearchIn: func(a domain.Activity) []string { return []string{a.AdminName, a.Object} },
	Facet:    func(a domain.Activity) string { return a.Activity },
	Sorts: map[string]listing.SortKey[domain.Activity]{
		"admin_name": listing.ByText(func(a domain.Activity) string { return a.AdminName }),
		"activity":   listing.ByText(func(a domain.Activity) string { return a.Activity }),
		"object":     listing.ByText(func(a domain.Activity) string { return a.Object }),
		"created_at": byDate(func(a domain.Activity) string { return a.CreatedAt }),
	},
	DefaultSort: "created_at",
	DefaultDir:  listing.Desc,
}

var ApplicationScreen = listing.Spec[domain.SellerApplication]{
	SearchIn: func(a domain.SellerApplication) []string { return []string{a.FullName(), a.Email, a.PhoneNumber} },
	Facet:    func(a domain.SellerApplication) string { return string(a.Status.Normalize()) },
	Sorts: map[string]listing.SortKey[domain.SellerApplication]{
		"name":       listing.ByText(domain.SellerApplication.FullName),
		"email":      listing.ByText(func(a domain.SellerApplication) string { return a.Email }),
		"status":     listing.ByText(func(a domain.SellerApplication) string { return string(a.Status.Normalize()) }),
		"created_at": byDate(func(a domain.SellerApplication) string { return a.CreatedAt }),
	},
	DefaultSort: "created_at",
	DefaultDir:  listing.Desc,
}
