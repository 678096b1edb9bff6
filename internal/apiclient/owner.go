package apiclient

import (
	"context"

	"elyukal/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// OwnerStore fetches the signed-in owner's store. The API answers 403 for a
// store the owner does not hold.
func (c *Client) OwnerStore(ctx context.Context, jar *Jar, id string) (domain.Store, error) {
	var s domain.Store
	path := item("/store-user/store/%s", id)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &s); err != nil {
		return domain.Store{}, err
	}
	if err := c.check(path, s); err != nil {
		return domain.Store{}, err
	}
	return s, nil
}

func (c *Client) CreateOwnerStore(ctx context.Context, jar *Jar, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPost, "/store-user/create-store", body)
}

func (c *Client) UpdateOwnerStore(ctx context.Context, jar *Jar, id string, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item("/store-user/update-store/%s", id), body)
}

func (c *Client) UpdateOwnerProfile(ctx context.Context, jar *Jar, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, "/store-user/update-profile", body)
}

// SubmitApplication posts a seller application. It runs without a session.
func (c *Client) SubmitApplication(ctx context.Context, body *Payload) (string, error) {
	return c.mutate(ctx, nil, fiber.MethodPost, "/seller-application", body)
}
