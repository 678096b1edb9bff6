package services

import (
	"context"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/listing"
)

// CatalogAPI is the part of the upstream the list screens read.
type CatalogAPI interface {
	Products(ctx context.Context, jar *apiclient.Jar, rt apiclient.ProductRoutes) ([]domain.Product, error)
	ArchivedProducts(ctx context.Context, jar *apiclient.Jar, rt apiclient.ProductRoutes) ([]domain.Product, error)
	Stores(ctx context.Context, jar *apiclient.Jar) ([]domain.Store, error)
	Users(ctx context.Context, jar *apiclient.Jar) ([]domain.User, error)
	Activities(ctx context.Context, jar *apiclient.Jar) ([]domain.Activity, error)
	Applications(ctx context.Context, jar *apiclient.Jar) ([]domain.SellerApplication, error)
	Municipalities(ctx context.Context, jar *apiclient.Jar) ([]domain.Municipality, error)
}

// CatalogService fetches a full collection and hands back one screen page.
// A failed fetch yields an empty page together with the error; callers log
// the error and render the empty page.
type CatalogService struct {
	API CatalogAPI
}

func NewCatalogService(api CatalogAPI) *CatalogService {
	return &CatalogService{API: api}
}

func (s *CatalogService) Products(ctx context.Context, jar *apiclient.Jar, rt apiclient.ProductRoutes, q listing.Query) (listing.Result[domain.Product], error) {
	rows, err := s.API.Products(ctx, jar, rt)
	return ProductScreen.Apply(rows, q), err
}

func (s *CatalogService) ArchivedProducts(ctx context.Context, jar *apiclient.Jar, rt apiclient.ProductRoutes, q listing.Query) (listing.Result[domain.Product], error) {
	rows, err := s.API.ArchivedProducts(ctx, jar, rt)
	return ArchivedProductScreen.Apply(rows, q), err
}

func (s *CatalogService) Stores(ctx context.Context, jar *apiclient.Jar, q listing.Query) (listing.Result[domain.Store], error) {
	rows, err := s.API.Stores(ctx, jar)
	return StoreScreen.Apply(rows, q), err
}

func (s *CatalogService) Users(ctx context.Context, jar *apiclient.Jar, q listing.Query) (listing.Result[domain.User], error) {
	rows, err := s.API.Users(ctx, jar)
	return UserScreen.Apply(rows, q), err
}

func (s *CatalogService) Activities(ctx context.Context, jar *apiclient.Jar, q listing.Query) (listing.Result[domain.Activity], error) {
	rows, err := s.API.Activities(ctx, jar)
	return ActivityScreen.Apply(rows, q), err
}

func (s *CatalogService) Applications(ctx context.Context, jar *apiclient.Jar, q listing.Query) (listing.Result[domain.SellerApplication], error) {
	rows, err := s.API.Applications(ctx, jar)
	return ApplicationScreen.Apply(rows, q), err
}

// StoreChoices is every store sorted by name, for the product form's select.
func (s *CatalogService) StoreChoices(ctx context.Context, jar *apiclient.Jar) ([]domain.Store, error) {
	rows, err := s.API.Stores(ctx, jar)
	return StoreScreen.Sort(rows, "name", listing.Asc), err
}

func (s *CatalogService) Towns(ctx context.Context, jar *apiclient.Jar) ([]domain.Municipality, error) {
	return s.API.Municipalities(ctx, jar)
}
