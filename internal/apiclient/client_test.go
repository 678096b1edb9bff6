package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"elyukal/internal/domain"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestProductsDropsRowsFailingSchema(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fetch_products", r.URL.Path)
		_, _ = io.WriteString(w, `{"products":[
			{"id":1,"name":"Bagnet","price_min":150,"price_max":300,"average_rating":"4.2","stores":{"store_id":"s1","name":"Vigan Deli"}},
			{"id":2,"name":""},
			{"id":3,"name":"Basi","price_min":-1}
		]}`)
	}))

	got, err := c.Products(context.Background(), NewJar(nil), AdminProducts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ID("1"), got[0].ID)
	assert.Equal(t, "Vigan Deli", got[0].StoreName())
	assert.InDelta(t, 4.2, float64(got[0].AverageRating), 1e-9)
}

func TestNon2xxCarriesDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/fetch_users":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`)
		}
	}))
	ctx := context.Background()

	_, err := c.Users(ctx, NewJar(nil))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Not authenticated", Message(err, "fallback"))

	_, err = c.UpdateUser(ctx, NewJar(nil), "a@b.ph", (&Payload{}).Set("first_name", "Ana"))
	assert.Equal(t, "field required", Message(err, "fallback"))

	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
}

func TestSessionCookiesCapturedForwardedAndCleared(t *testing.T) {
	var sawCookie atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Invalid credentials"}`)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "tok-1", Path: "/", HttpOnly: true})
			_, _ = io.WriteString(w, `{"message":"Login successful"}`)
		case "/auth/profile":
			ck, err := r.Cookie("session_id")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			sawCookie.Store(ck.Value)
			_, _ = io.WriteString(w, `{"profile":{"email":"admin@elyukal.ph","first_name":"Ana"}}`)
		case "/auth/logout":
			http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "", Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)})
			_, _ = io.WriteString(w, `{"message":"Logged out"}`)
		}
	}))
	ctx := context.Background()
	jar := NewJar(nil)

	err := c.Login(ctx, jar, "/auth/login", "admin@elyukal.ph", "nope")
	assert.Equal(t, "Invalid credentials", Message(err, ""))
	assert.True(t, jar.Empty())

	require.NoError(t, c.Login(ctx, jar, "/auth/login", "admin@elyukal.ph", "secret"))
	assert.Equal(t, "tok-1", jar.Get("session_id"))
	assert.True(t, jar.Changed())

	p, err := c.Profile(ctx, jar, "/auth/profile")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "tok-1", sawCookie.Load())

	require.NoError(t, c.Logout(ctx, jar, http.MethodPost, "/auth/logout"))
	assert.True(t, jar.Empty())
}

func TestProfileSchemaMismatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"profile":{"email":"not-an-email"}}`)
	}))
	_, err := c.Profile(context.Background(), NewJar(nil), "/store-user/profile")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestPayloadEncoding(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		switch r.URL.Path {
		case "/store-user/add-product":
			require.True(t, strings.HasPrefix(ct, "multipart/form-data"), ct)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Bagnet", r.FormValue("name"))
			assert.Equal(t, "150", r.FormValue("price_min"))
			require.Len(t, r.MultipartForm.File["images"], 2)
			assert.Equal(t, "a.jpg", r.MultipartForm.File["images"][0].Filename)
		case "/update_user/ana@elyukal.ph":
			require.True(t, strings.HasPrefix(ct, "application/json"), ct)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ana", body["first_name"])
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}))
	ctx := context.Background()

	body := (&Payload{}).Set("name", "Bagnet").Set("price_min", 150.0).
		Attach("images", "a.jpg", []byte("aaa")).Attach("images", "b.jpg", []byte("bbb"))
	msg, err := c.AddProduct(ctx, NewJar(nil), OwnerProducts, body)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)

	_, err = c.UpdateUser(ctx, NewJar(nil), "ana@elyukal.ph", (&Payload{}).Set("first_name", "Ana"))
	require.NoError(t, err)
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	var hits atomic.Int32
	status := atomic.Int32{}
	status.Store(http.StatusBadRequest)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := c.Stores(ctx, NewJar(nil))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
	}
	assert.Equal(t, int32(6), hits.Load())

	status.Store(http.StatusBadGateway)
	for i := 0; i < 5; i++ {
		_, _ = c.Stores(ctx, NewJar(nil))
	}
	before := hits.Load()
	_, err := c.Stores(ctx, NewJar(nil))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, hits.Load())
}

func TestCanceledContextSkipsCall(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Activities(ctx, NewJar(nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits.Load())
}

func TestOwnerSelfServiceCalls(t *testing.T) {
	var gotCookie atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /store-user/store/s-9":
			_, _ = io.WriteString(w, `{"store_id":"s-9","name":"Vigan Deli","latitude":17.57,"longitude":120.38}`)
		case "POST /seller-application":
			gotCookie.Store(r.Header.Get("Cookie"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Rosa", r.FormValue("first_name"))
			assert.Len(t, r.MultipartForm.File["business_permit"], 1)
			_, _ = io.WriteString(w, `{"message":"Application submitted successfully","status":"pending"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	ctx := context.Background()

	s, err := c.OwnerStore(ctx, NewJar(map[string]string{"store_user_session": "tok"}), "s-9")
	require.NoError(t, err)
	assert.Equal(t, "Vigan Deli", s.Name)

	body := (&Payload{}).Set("first_name", "Rosa").Attach("business_permit", "permit.pdf", []byte("%PDF-1.4"))
	msg, err := c.SubmitApplication(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, "Application submitted successfully", msg)
	assert.Equal(t, "", gotCookie.Load())
}
