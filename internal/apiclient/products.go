package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"elyukal/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// ProductRoutes is the endpoint set for one identity's product catalogue.
// Item paths take the product id as their only verb.
type ProductRoutes struct {
	List     string
	Archived string
	Get      string
	Add      string
	Update   string
	Archive  string
	Restore  string
	Purge    string
}

var AdminProducts = ProductRoutes{
	List:     "/fetch_products",
	Archived: "/admin/fetch-archived-products",
	Get:      "/fetch_product/%s",
	Add:      "/add_product",
	Update:   "/update_product/%s",
	Archive:  "/admin/archive-product/%s",
	Restore:  "/admin/restore-product/%s",
	Purge:    "/admin/permanently-delete-product/%s",
}

var OwnerProducts = ProductRoutes{
	List:     "/store-user/fetch-products",
	Archived: "/store-user/fetch-archived-products",
	Get:      "/store-user/fetch-product/%s",
	Add:      "/store-user/add-product",
	Update:   "/store-user/update-product/%s",
	Archive:  "/store-user/archive-product/%s",
	Restore:  "/store-user/restore-product/%s",
	Purge:    "/store-user/permanently-delete-product/%s",
}

func item(pattern, id string) string { return fmt.Sprintf(pattern, url.PathEscape(id)) }

type productsEnvelope struct {
	Products []domain.Product `json:"products"`
}

func (c *Client) listProducts(ctx context.Context, jar *Jar, path string) ([]domain.Product, error) {
	var env productsEnvelope
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return nil, err
	}
	return keepValid(c, path, env.Products), nil
}

func (c *Client) Products(ctx context.Context, jar *Jar, rt ProductRoutes) ([]domain.Product, error) {
	return c.listProducts(ctx, jar, rt.List)
}

func (c *Client) ArchivedProducts(ctx context.Context, jar *Jar, rt ProductRoutes) ([]domain.Product, error) {
	return c.listProducts(ctx, jar, rt.Archived)
}

func (c *Client) Product(ctx context.Context, jar *Jar, rt ProductRoutes, id string) (domain.Product, error) {
	var env struct {
		Product *domain.Product `json:"product" validate:"required"`
	}
	path := item(rt.Get, id)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return domain.Product{}, err
	}
	if err := c.check(path, env); err != nil {
		return domain.Product{}, err
	}
	return *env.Product, nil
}

func (c *Client) AddProduct(ctx context.Context, jar *Jar, rt ProductRoutes, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPost, rt.Add, body)
}

func (c *Client) UpdateProduct(ctx context.Context, jar *Jar, rt ProductRoutes, id string, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item(rt.Update, id), body)
}

func (c *Client) ArchiveProduct(ctx context.Context, jar *Jar, rt ProductRoutes, id string) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item(rt.Archive, id), nil)
}

func (c *Client) RestoreProduct(ctx context.Context, jar *Jar, rt ProductRoutes, id string) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item(rt.Restore, id), nil)
}

func (c *Client) PurgeProduct(ctx context.Context, jar *Jar, rt ProductRoutes, id string) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodDelete, item(rt.Purge, id), nil)
}

func (c *Client) Reviews(ctx context.Context, jar *Jar, productID string) ([]domain.Review, error) {
	var rows []domain.Review
	path := item("/reviews/%s", productID)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &rows); err != nil {
		return nil, err
	}
	return keepValid(c, path, rows), nil
}

func (c *Client) Municipalities(ctx context.Context, jar *Jar) ([]domain.Municipality, error) {
	var rows []domain.Municipality
	const path = "/fetch_municipalities"
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &rows); err != nil {
		return nil, err
	}
	return keepValid(c, path, rows), nil
}
