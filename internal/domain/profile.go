package domain

import "strings"

// Profile is the identity returned by either profile endpoint. Status and the
// store fields are only present for store owners.
type Profile struct {
	Email       string            `json:"email" validate:"required,email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	CreatedAt   string            `json:"created_at"`
	Status      ApplicationStatus `json:"status"`
	StoreOwned  ID                `json:"store_owned"`
	StoreName   string            `json:"store_name"`
	PhoneNumber string            `json:"phone_number"`
}

func (p Profile) DisplayName() string {
	if n := strings.TrimSpace(p.FirstName + " " + p.LastName); n != "" {
		return n
	}
	return p.Email
}

func (p Profile) Initials() string {
	var b strings.Builder
	for _, s := range []string{p.FirstName, p.LastName} {
		if s != "" {
			b.WriteString(strings.ToUpper(s[:1]))
		}
	}
	if b.Len() == 0 && p.Email != "" {
		b.WriteString(strings.ToUpper(p.Email[:1]))
	}
	return b.String()
}

type DashboardStats struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalCategories int     `json:"totalCategories"`
	ActiveLocations int     `json:"activeLocations"`
	TotalReviews    int     `json:"totalReviews"`
	AverageRating   float64 `json:"averageRating"`
	ProductViews    int     `json:"productViews"`
	PendingApproval int     `json:"pendingApproval"`
}

type TopProduct struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Views int    `json:"views"`
}

type StoreStats struct {
	StoreOwned      ID           `json:"store_owned"`
	TotalProducts   int          `json:"totalProducts"`
	TotalCategories int          `json:"totalCategories"`
	ProductViews    int          `json:"productViews"`
	TotalReviews    int          `json:"totalReviews"`
	AverageRating   float64      `json:"averageRating"`
	TopProducts     []TopProduct `json:"topProducts"`
}
