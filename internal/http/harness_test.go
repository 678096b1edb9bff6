package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"elyukal/internal/apiclient"
	"elyukal/internal/config"
	"elyukal/internal/http/handlers"
	applog "elyukal/internal/log"
	"elyukal/internal/repos"
)

const goodPassword = "Passw0rd!"

type call struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// upstream is a stand-in for the marketplace API. Unrouted paths answer 404.
type upstream struct {
	mu          sync.Mutex
	calls       []call
	routes      map[string]http.HandlerFunc
	ownerStatus string
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server) {
	t.Helper()
	u := &upstream{routes: map[string]http.HandlerFunc{}, ownerStatus: "accepted"}
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)
	return u, srv
}

// on routes "METHOD /path" to h.
func (u *upstream) on(route string, h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[route] = h
}

func (u *upstream) setOwnerStatus(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ownerStatus = s
}

func (u *upstream) onJSON(route string, status int, body string) {
	u.on(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (u *upstream) called(method, path string) (call, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.calls) - 1; i >= 0; i-- {
		if u.calls[i].Method == method && u.calls[i].Path == path {
			return u.calls[i], true
		}
	}
	return call{}, false
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	u.mu.Lock()
	u.calls = append(u.calls, call{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type"), Body: body})
	h, ok := u.routes[r.Method+" "+r.URL.Path]
	status := u.ownerStatus
	u.mu.Unlock()

	if ok {
		h(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /auth/login":
		login(w, body, "session_id", "adm-token")
	case "POST /store-user/login":
		login(w, body, "store_user_session", "own-token")
	case "GET /auth/profile":
		if ck, err := r.Cookie("session_id"); err != nil || ck.Value != "adm-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
			return
		}
		_, _ = io.WriteString(w, `{"profile":{"email":"admin@elyukal.ph","first_name":"Ana","last_name":"Reyes"}}`)
	case "GET /store-user/profile":
		if ck, err := r.Cookie("store_user_session"); err != nil || ck.Value != "own-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
			return
		}
		_, _ = io.WriteString(w, `{"email":"owner@elyukal.ph","first_name":"Lito","last_name":"Ramos","status":"`+status+`","store_owned":12,"store_name":"Vigan Deli"}`)
	case "GET /auth/logout", "POST /auth/logout", "GET /store-user/logout":
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "", MaxAge: -1})
		_, _ = io.WriteString(w, `{"message":"Logged out"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
	}
}

func login(w http.ResponseWriter, body []byte, cookie, token string) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &creds)
	if creds.Password != goodPassword {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Invalid email or password"}`)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: cookie, Value: token, Path: "/", HttpOnly: true})
	_, _ = io.WriteString(w, `{"message":"Login successful"}`)
}

type harness struct {
	app  *fiber.App
	deps *handlers.Deps
	api  *upstream
}

// newHarness wires the real routes against a fake upstream; setup runs
// before the routes are registered.
func newHarness(t *testing.T, setup ...func(*handlers.Deps)) *harness {
	t.Helper()
	api, srv := newUpstream(t)
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		StagingMaxBytes: 1 << 20,
		StagingTTL:      time.Hour,
		ApproveStatus:   "accepted",
	}
	client := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	deps, err := handlers.NewDeps(db, cfg, client)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}

	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine("../../web/templates", false),
		ErrorHandler: handlers.ErrorHandler,
	})
	for _, fn := range setup {
		fn(deps)
	}
	handlers.Register(app, deps)
	app.Use(func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	return &harness{app: app, deps: deps, api: api}
}

func (h *harness) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func (h *harness) get(t *testing.T, target, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return h.do(t, req)
}

func (h *harness) post(t *testing.T, target, sid string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return h.do(t, req)
}

type upload struct {
	Field, Name string
	Data        []byte
}

func (h *harness) postMultipart(t *testing.T, target, sid string, form url.Values, files ...upload) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			_ = mw.WriteField(k, v)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(f.Data)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	return h.do(t, req)
}

// signIn logs in through the real login route and returns the browser sid.
func (h *harness) signIn(t *testing.T, page, email string) string {
	t.Helper()
	resp := h.post(t, page, "", url.Values{"email": {email}, "password": {goodPassword}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("sign in via %s: expected 302, got %d", page, resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("sign in did not set the sid cookie")
	}
	return sid
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func flashOf(resp *http.Response) string {
	v, _ := url.QueryUnescape(cookieValue(resp, "flash"))
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{G: 180, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type logEntry struct {
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	Level  string         `json:"level"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(line), &e) == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
