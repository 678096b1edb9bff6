package apiclient

import (
	"context"

	"elyukal/internal/domain"

	"github.com/gofiber/fiber/v2"
)

func (c *Client) Stores(ctx context.Context, jar *Jar) ([]domain.Store, error) {
	var rows []domain.Store
	const path = "/fetch_stores"
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &rows); err != nil {
		return nil, err
	}
	return keepValid(c, path, rows), nil
}

func (c *Client) Store(ctx context.Context, jar *Jar, id string) (domain.Store, error) {
	var env struct {
		Store *domain.Store `json:"store" validate:"required"`
	}
	path := item("/fetch_store/%s", id)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return domain.Store{}, err
	}
	if err := c.check(path, env); err != nil {
		return domain.Store{}, err
	}
	return *env.Store, nil
}

func (c *Client) AddStore(ctx context.Context, jar *Jar, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPost, "/add_store", body)
}

func (c *Client) UpdateStore(ctx context.Context, jar *Jar, id string, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item("/update_store/%s", id), body)
}

func (c *Client) DeleteStore(ctx context.Context, jar *Jar, id string) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodDelete, item("/delete_store/%s", id), nil)
}

func (c *Client) Users(ctx context.Context, jar *Jar) ([]domain.User, error) {
	var env struct {
		Users []domain.User `json:"users"`
	}
	const path = "/fetch_users"
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return nil, err
	}
	return keepValid(c, path, env.Users), nil
}

func (c *Client) User(ctx context.Context, jar *Jar, email string) (domain.User, error) {
	var env struct {
		User *domain.User `json:"user" validate:"required"`
	}
	path := item("/fetch_user/%s", email)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return domain.User{}, err
	}
	if err := c.check(path, env); err != nil {
		return domain.User{}, err
	}
	return *env.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, jar *Jar, email string, body *Payload) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPut, item("/update_user/%s", email), body)
}

// BanUser sends an optional reason; an empty reason is omitted.
func (c *Client) BanUser(ctx context.Context, jar *Jar, email, reason string) (string, error) {
	body := &Payload{}
	if reason != "" {
		body.Set("reason", reason)
	}
	return c.mutate(ctx, jar, fiber.MethodPost, item("/ban_user/%s", email), body)
}

func (c *Client) UnbanUser(ctx context.Context, jar *Jar, email string) (string, error) {
	return c.mutate(ctx, jar, fiber.MethodPost, item("/unban_user/%s", email), nil)
}

func (c *Client) Activities(ctx context.Context, jar *Jar) ([]domain.Activity, error) {
	var env struct {
		Activities []domain.Activity `json:"activities"`
	}
	const path = "/fetch_activities"
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &env); err != nil {
		return nil, err
	}
	return keepValid(c, path, env.Activities), nil
}

func (c *Client) Applications(ctx context.Context, jar *Jar) ([]domain.SellerApplication, error) {
	var rows []domain.SellerApplication
	const path = "/seller-applications"
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &rows); err != nil {
		return nil, err
	}
	return keepValid(c, path, rows), nil
}

func (c *Client) Application(ctx context.Context, jar *Jar, id string) (domain.SellerApplication, error) {
	var app domain.SellerApplication
	path := item("/seller-applications/%s", id)
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &app); err != nil {
		return app, err
	}
	if err := c.check(path, app); err != nil {
		return domain.SellerApplication{}, err
	}
	return app, nil
}

func (c *Client) SetApplicationStatus(ctx context.Context, jar *Jar, id string, status domain.ApplicationStatus) (string, error) {
	body := (&Payload{}).Set("status", string(status))
	return c.mutate(ctx, jar, fiber.MethodPut, item("/seller-applications/%s/status", id), body)
}

func (c *Client) DashboardStats(ctx context.Context, jar *Jar) (domain.DashboardStats, error) {
	var s domain.DashboardStats
	err := c.do(ctx, jar, request{method: fiber.MethodGet, path: "/dashboard/stats"}, &s)
	return s, err
}

func (c *Client) StoreStats(ctx context.Context, jar *Jar) (domain.StoreStats, error) {
	var s domain.StoreStats
	err := c.do(ctx, jar, request{method: fiber.MethodGet, path: "/store-user/stats"}, &s)
	return s, err
}
