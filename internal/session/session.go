// Package session mirrors an upstream login into a browser session. One
// Manager exists per identity kind (admin, store owner); each request opens
// a Context for its browser session.
package session

import (
	"context"
	"fmt"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	Admin      Kind = "admin"
	StoreOwner Kind = "store_owner"
)

// Endpoints is the role-specific part of an identity: upstream auth routes
// plus the dashboard pages the role lands on.
type Endpoints struct {
	Kind         Kind
	Cookie       string
	Login        string
	Profile      string
	Logout       string
	LogoutMethod string
	LoginPage    string
	HomePage     string
	PendingPage  string
	RejectedPage string
}

var AdminEndpoints = Endpoints{
	Kind:         Admin,
	Cookie:       "session_id",
	Login:        "/auth/login",
	Profile:      "/auth/profile",
	Logout:       "/auth/logout",
	LogoutMethod: fiber.MethodPost,
	LoginPage:    "/login",
	HomePage:     "/dashboard",
}

var StoreOwnerEndpoints = Endpoints{
	Kind:         StoreOwner,
	Cookie:       "store_user_session",
	Login:        "/store-user/login",
	Profile:      "/store-user/profile",
	Logout:       "/store-user/logout",
	LogoutMethod: fiber.MethodGet,
	LoginPage:    "/seller-login",
	HomePage:     "/store/dashboard",
	PendingPage:  "/seller-login/pending",
	RejectedPage: "/seller-login/rejected",
}

type StateKind int

const (
	Unresolved StateKind = iota
	Anonymous
	Authenticated
)

func (k StateKind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unresolved"
}

// AuthState is Unresolved, Anonymous(Reason) or Authenticated(Profile).
type AuthState struct {
	Kind    StateKind
	Reason  string
	Profile domain.Profile
}

func (s AuthState) Authenticated() bool { return s.Kind == Authenticated }

func anonymous(reason string) AuthState { return AuthState{Kind: Anonymous, Reason: reason} }

// API is the upstream auth surface; *apiclient.Client satisfies it.
type API interface {
	Login(ctx context.Context, jar *apiclient.Jar, path, email, password string) error
	Profile(ctx context.Context, jar *apiclient.Jar, path string) (domain.Profile, error)
	Logout(ctx context.Context, jar *apiclient.Jar, method, path string) error
}

// Store persists the upstream cookies; *repos.SessionRepo satisfies it.
type Store interface {
	Cookies(sid, kind string) (map[string]string, error)
	Save(sid, kind string, cookies map[string]string) error
	Clear(sid, kind string) error
	Touch(sid, kind string) error
}

type Manager struct {
	Endpoints Endpoints
	api       API
	store     Store
}

func NewManager(ep Endpoints, api API, store Store) *Manager {
	return &Manager{Endpoints: ep, api: api, store: store}
}

// Open loads the identity held by browser session sid. The returned Context
// is Unresolved until Resolve or Login runs.
func (m *Manager) Open(sid string) (*Context, error) {
	cookies, err := m.store.Cookies(sid, string(m.Endpoints.Kind))
	if err != nil {
		return nil, fmt.Errorf("load %s session: %w", m.Endpoints.Kind, err)
	}
	return &Context{m: m, sid: sid, Jar: apiclient.NewJar(cookies)}, nil
}

// Destination routes a store owner whose application is pending or rejected
// to the matching holding page; everyone else goes to requested. It only
// steers the display and grants nothing.
func (m *Manager) Destination(st AuthState, requested string) string {
	if m.Endpoints.Kind != StoreOwner || !st.Authenticated() {
		return requested
	}
	switch st.Profile.Status.Normalize() {
	case domain.StatusPending:
		return m.Endpoints.PendingPage
	case domain.StatusRejected:
		return m.Endpoints.RejectedPage
	}
	return requested
}

type Context struct {
	m     *Manager
	sid   string
	Jar   *apiclient.Jar
	state AuthState
}

func (c *Context) State() AuthState { return c.state }
func (c *Context) Endpoints() Endpoints { return c.m.Endpoints }

// Resolve fetches the profile once per request. Without a held cookie it
// settles on Anonymous without calling upstream.
func (c *Context) Resolve(ctx context.Context) AuthState {
	if c.state.Kind != Unresolved {
		return c.state
	}
	if c.Jar.Empty() {
		c.state = anonymous("not signed in")
		return c.state
	}
	p, err := c.m.api.Profile(ctx, c.Jar, c.m.Endpoints.Profile)
	if err != nil {
		c.state = anonymous(apiclient.Message(err, "session expired"))
		if apiclient.IsUnauthorized(err) {
			c.Jar.Clear()
		}
		_ = c.Persist()
		return c.state
	}
	c.state = AuthState{Kind: Authenticated, Profile: p}
	if c.Jar.Changed() {
		_ = c.Persist()
	} else {
		// keeps an active session out of the idle purge
		_ = c.m.store.Touch(c.sid, string(c.m.Endpoints.Kind))
	}
	return c.state
}

// Login posts credentials and, on success, re-fetches the profile since the
// login response carries no identity. Failure leaves the state Anonymous
// with the server's message.
func (c *Context) Login(ctx context.Context, email, password string) (AuthState, error) {
	if err := c.m.api.Login(ctx, c.Jar, c.m.Endpoints.Login, email, password); err != nil {
		c.state = anonymous(apiclient.Message(err, "Login failed"))
		return c.state, err
	}
	if err := c.Persist(); err != nil {
		c.state = anonymous("Login failed")
		return c.state, err
	}
	c.state = AuthState{}
	st := c.Resolve(ctx)
	if !st.Authenticated() {
		return st, fmt.Errorf("profile after login: %s", st.Reason)
	}
	return st, nil
}

// Logout invalidates upstream best-effort and always drops the local cookies.
// The returned error is for logging only.
func (c *Context) Logout(ctx context.Context) error {
	var upstream error
	if !c.Jar.Empty() {
		upstream = c.m.api.Logout(ctx, c.Jar, c.m.Endpoints.LogoutMethod, c.m.Endpoints.Logout)
	}
	c.Jar.Clear()
	c.state = anonymous("signed out")
	if err := c.m.store.Clear(c.sid, string(c.m.Endpoints.Kind)); err != nil {
		return err
	}
	return upstream
}

// Persist saves the jar when an upstream response changed it.
func (c *Context) Persist() error {
	if !c.Jar.Changed() {
		return nil
	}
	return c.m.store.Save(c.sid, string(c.m.Endpoints.Kind), c.Jar.Snapshot())
}
