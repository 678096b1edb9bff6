package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"elyukal/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// Login posts credentials. On success the session cookie lands in jar; the
// response body carries no identity.
func (c *Client) Login(ctx context.Context, jar *Jar, path, email, password string) error {
	body := (&Payload{}).Set("email", email).Set("password", password)
	return c.do(ctx, jar, request{method: fiber.MethodPost, path: path, body: body}, nil)
}

// Profile accepts both {"profile": {...}} and a bare profile object.
func (c *Client) Profile(ctx context.Context, jar *Jar, path string) (domain.Profile, error) {
	var raw json.RawMessage
	if err := c.do(ctx, jar, request{method: fiber.MethodGet, path: path}, &raw); err != nil {
		return domain.Profile{}, err
	}
	var env struct {
		Profile *domain.Profile `json:"profile"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
	}
	p := env.Profile
	if p == nil {
		p = &domain.Profile{}
		if err := json.Unmarshal(raw, p); err != nil {
			return domain.Profile{}, fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
		}
	}
	if err := c.check(path, p); err != nil {
		return domain.Profile{}, err
	}
	return *p, nil
}

func (c *Client) Logout(ctx context.Context, jar *Jar, method, path string) error {
	return c.do(ctx, jar, request{method: method, path: path}, nil)
}
