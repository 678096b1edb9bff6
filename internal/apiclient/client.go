// Package apiclient talks to the Elyu-kal REST API on behalf of a browser
// session, forwarding the upstream session cookies it holds.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	applog "elyukal/internal/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
)

// ErrSchema marks a 2xx response whose body did not match the expected shape.
var ErrSchema = errors.New("response schema mismatch")

// Error is a non-2xx answer from the API. Detail is FastAPI's "detail" field.
type Error struct {
	Status int
	Detail string
	Method string
	Path   string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
}

// Message is what a write path shows the user: the server's detail when the
// API sent one, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsUnauthorized reports whether the API rejected the held session.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Status == fiber.StatusUnauthorized || apiErr.Status == fiber.StatusForbidden)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// BreakerName labels breaker state changes in the log.
	BreakerName string
}

type Client struct {
	base     string
	timeout  time.Duration
	http     *fiber.Client
	cb       *gobreaker.CircuitBreaker
	validate *validator.Validate
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerName == "" {
		opts.BreakerName = "elyukal-api"
	}
	settings := gobreaker.Settings{
		Name:        opts.BreakerName,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		// 4xx answers are the API working as intended
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, ErrSchema) {
				return true
			}
			var apiErr *Error
			return errors.As(err, &apiErr) && apiErr.Status < fiber.StatusInternalServerError
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			applog.Bg("upstream.breaker.state", nil, map[string]any{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
		http:     &fiber.Client{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal},
		cb:       gobreaker.NewCircuitBreaker(settings),
		validate: validator.New(),
	}
}

type request struct {
	method string
	path   string
	body   *Payload
}

// do runs one call through the breaker and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, jar *Jar, r request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, jar, r, out)
	})
	return err
}

func (c *Client) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return c.http.Post(url)
	case fiber.MethodPut:
		return c.http.Put(url)
	case fiber.MethodDelete:
		return c.http.Delete(url)
	}
	return c.http.Get(url)
}

func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	d := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	return max(d, time.Millisecond)
}

func (c *Client) roundTrip(ctx context.Context, jar *Jar, r request, out any) error {
	a := c.agent(r.method, c.base+r.path)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if jar != nil {
		for k, v := range jar.Snapshot() {
			a.Cookie(k, v)
		}
	}
	if r.body != nil {
		if r.body.Multipart() {
			args := fiber.AcquireArgs()
			defer fiber.ReleaseArgs(args)
			for _, f := range r.body.Fields {
				args.Add(f.Name, f.String())
			}
			a.FileData(r.body.formFiles()...).MultipartForm(args)
		} else {
			a.JSON(r.body.Object())
		}
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	code, body, errs := a.SetResponse(resp).Timeout(c.timeoutFor(ctx)).Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", r.method, r.path, errors.Join(errs...))
	}
	if jar != nil {
		jar.absorb(&resp.Header)
	}

	if code < 200 || code > 299 {
		return &Error{Status: code, Detail: detailOf(body), Method: r.method, Path: r.path}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrSchema, r.method, r.path, err)
	}
	return nil
}

func detailOf(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}
	// request validation failures carry a list of {loc, msg}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &items) == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

// check validates a decoded single-record envelope.
func (c *Client) check(path string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
	}
	return nil
}

// keepValid drops rows that fail their schema and logs how many were dropped.
func keepValid[T any](c *Client, path string, rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if err := c.validate.Struct(r); err != nil {
			applog.Bg("upstream.schema.reject", err, map[string]any{"path": path})
			continue
		}
		out = append(out, r)
	}
	return out
}

type messageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// mutate performs a write and returns the API's message, if any.
func (c *Client) mutate(ctx context.Context, jar *Jar, method, path string, body *Payload) (string, error) {
	var out messageResponse
	err := c.do(ctx, jar, request{method: method, path: path, body: body}, &out)
	if errors.Is(err, ErrSchema) {
		// a 2xx with a non-JSON body is still a successful write
		return "", nil
	}
	return out.Message, err
}
