package handlers_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const vigan = `{"store_id":12,"name":"Vigan Deli","description":"Longganisa and empanada","type":"Food Stall","latitude":17.57,"longitude":120.38,"town":"Vigan City","phone":"0771234567"}`

func storeFields(action string) url.Values {
	return url.Values{
		"action":      {action},
		"name":        {"Vigan Deli"},
		"description": {"Longganisa and empanada"},
		"type":        {"Food Stall"},
		"latitude":    {"17.57"},
		"longitude":   {"120.38"},
		"town":        {"Vigan City"},
	}
}

func TestMyStoreShowsOwnStore(t *testing.T) {
	h := newHarness(t)
	sid := h.signIn(t, "/seller-login", "owner@elyukal.ph")
	h.api.onJSON("GET /store-user/store/12", http.StatusOK, vigan)

	body := bodyOf(t, h.get(t, "/store/store", sid))
	for _, want := range []string{"Vigan Deli", "Food Stall", `href="/store/store/edit"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q on my store, got %q", want, body)
		}
	}

	// an owner with a store never sees the create form
	resp := h.get(t, "/store/store/new", sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/store/store/edit" {
		t.Fatalf("expected redirect to edit, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp = h.post(t, "/store/store/new", sid, storeFields("save"))
	if resp.Header.Get("Location") != "/store/store" || !strings.HasPrefix(flashOf(resp), "error|You already have a store") {
		t.Fatalf("expected a second store to be refused, got %q %q", resp.Header.Get("Location"), flashOf(resp))
	}
	if _, ok := h.api.called(http.MethodPost, "/store-user/create-store"); ok {
		t.Fatal("a second store must not reach the API")
	}
}

func TestMyStoreEditUsesOwnerRoutes(t *testing.T) {
	h := newHarness(t)
	sid := h.signIn(t, "/seller-login", "owner@elyukal.ph")
	h.api.onJSON("GET /store-user/store/12", http.StatusOK, vigan)
	h.api.onJSON("PUT /store-user/update-store/12", http.StatusOK, `{"message":"Store updated"}`)

	body := bodyOf(t, h.get(t, "/store/store/edit", sid))
	if !strings.Contains(body, `action="/store/store/edit"`) || !strings.Contains(body, `<option value="Food Stall" selected>`) {
		t.Fatalf("expected the owner edit form, got %q", body)
	}

	form := storeFields("save")
	form.Set("name", "Vigan Deli Express")
	resp := h.post(t, "/store/store/edit", sid, form)
	if resp.Header.Get("Location") != "/store/store" || flashOf(resp) != "success|Store updated" {
		t.Fatalf("expected redirect to my store, got %d %q %q", resp.StatusCode, resp.Header.Get("Location"), flashOf(resp))
	}
	c, ok := h.api.called(http.MethodPut, "/store-user/update-store/12")
	if !ok || !strings.Contains(string(c.Body), `"name":"Vigan Deli Express"`) {
		t.Fatalf("expected the owner update route, got %s", c.Body)
	}
	if _, ok := h.api.called(http.MethodPut, "/update_store/12"); ok {
		t.Fatal("owners must not use the admin store route")
	}
}

func TestOwnerWithoutStoreCreatesOne(t *testing.T) {
	h := newHarness(t)
	h.api.on("GET /store-user/profile", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("store_user_session"); err != nil || ck.Value != "own-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"email":"new@elyukal.ph","first_name":"Mila","last_name":"Agbayani","status":"accepted","store_owned":null}`)
	})
	h.api.onJSON("POST /store-user/create-store", http.StatusOK, `{"message":"Store created"}`)
	sid := h.signIn(t, "/seller-login", "new@elyukal.ph")

	body := bodyOf(t, h.get(t, "/store/store", sid))
	if !strings.Contains(body, `href="/store/store/new"`) {
		t.Fatalf("expected the create prompt, got %q", body)
	}
	resp := h.get(t, "/store/store/edit", sid)
	if resp.Header.Get("Location") != "/store/store/new" {
		t.Fatalf("expected edit to send a storeless owner to create, got %q", resp.Header.Get("Location"))
	}

	resp = h.post(t, "/store/store/new", sid, storeFields("save"))
	if resp.Header.Get("Location") != "/store/store" || flashOf(resp) != "success|Store created" {
		t.Fatalf("expected redirect to my store, got %d %q %q", resp.StatusCode, resp.Header.Get("Location"), flashOf(resp))
	}
	c, ok := h.api.called(http.MethodPost, "/store-user/create-store")
	if !ok || !strings.Contains(string(c.Body), `"type":"Food Stall"`) {
		t.Fatalf("expected the store upstream, got %s", c.Body)
	}
}

func TestProfileUpdate(t *testing.T) {
	h := newHarness(t)
	sid := h.signIn(t, "/seller-login", "owner@elyukal.ph")

	body := bodyOf(t, h.get(t, "/store/profile", sid))
	if !strings.Contains(body, `value="Lito"`) || !strings.Contains(body, `value="owner@elyukal.ph" readonly`) {
		t.Fatalf("expected the form prefilled from the profile, got %q", body)
	}

	resp := h.post(t, "/store/profile", sid, url.Values{"first_name": {"L"}, "last_name": {"Ramos"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(bodyOf(t, resp), "First name must be at least 2 characters") {
		t.Fatal("expected the field error on the page")
	}
	if _, ok := h.api.called(http.MethodPut, "/store-user/update-profile"); ok {
		t.Fatal("an invalid profile must not reach the API")
	}

	h.api.onJSON("PUT /store-user/update-profile", http.StatusOK, `{"message":"Profile updated"}`)
	resp = h.post(t, "/store/profile", sid, url.Values{"first_name": {"Lito"}, "last_name": {"Ramos"}, "phone_number": {"09171234567"}})
	if resp.Header.Get("Location") != "/store/profile" || flashOf(resp) != "success|Profile updated" {
		t.Fatalf("expected redirect with flash, got %d %q %q", resp.StatusCode, resp.Header.Get("Location"), flashOf(resp))
	}
	c, _ := h.api.called(http.MethodPut, "/store-user/update-profile")
	if !strings.HasPrefix(c.ContentType, "application/json") || !strings.Contains(string(c.Body), `"phone_number":"09171234567"`) {
		t.Fatalf("expected a JSON profile body, got %q %s", c.ContentType, c.Body)
	}
}

func applicationFields() url.Values {
	return url.Values{
		"action":           {"save"},
		"first_name":       {"Rosa"},
		"last_name":        {"Lim"},
		"email":            {"Rosa@Elyukal.ph"},
		"password":         {goodPassword},
		"confirm_password": {goodPassword},
		"phone_number":     {"09181234567"},
	}
}

func TestSellerApplication(t *testing.T) {
	h := newHarness(t)
	resp := h.get(t, "/seller-login/apply", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the form, got %d", resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("expected a browser session for staging")
	}
	if body := bodyOf(t, resp); !strings.Contains(body, `name="business_permit"`) || !strings.Contains(body, `name="dti_registration"`) {
		t.Fatalf("expected the document inputs, got %q", body)
	}

	resp = h.postMultipart(t, "/seller-login/apply", sid, applicationFields())
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without documents, got %d", resp.StatusCode)
	}
	body := bodyOf(t, resp)
	if !strings.Contains(body, "Business permit is required") || !strings.Contains(body, "Valid ID is required") {
		t.Fatalf("expected the missing documents, got %q", body)
	}
	if strings.Contains(body, goodPassword) {
		t.Fatal("the password must not be echoed into the page")
	}
	if _, ok := h.api.called(http.MethodPost, "/seller-application"); ok {
		t.Fatal("an incomplete application must not reach the API")
	}

	var (
		mu      sync.Mutex
		cookies []string
	)
	h.api.on("POST /seller-application", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		for _, ck := range r.Cookies() {
			cookies = append(cookies, ck.Name)
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"Application received"}`)
	})
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	resp = h.postMultipart(t, "/seller-login/apply", sid, applicationFields(),
		upload{Field: "business_permit", Name: "permit.pdf", Data: pdf},
		upload{Field: "valid_id", Name: "id.png", Data: pngBytes(t, 300, 200)})
	if resp.Header.Get("Location") != "/seller-login" {
		t.Fatalf("expected redirect to seller sign in, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if !strings.HasPrefix(flashOf(resp), "success|Application received. We will review") {
		t.Fatalf("unexpected flash %q", flashOf(resp))
	}

	c, ok := h.api.called(http.MethodPost, "/seller-application")
	if !ok || !strings.HasPrefix(c.ContentType, "multipart/form-data") {
		t.Fatalf("expected a multipart application, got %q", c.ContentType)
	}
	sent := string(c.Body)
	for _, want := range []string{"permit.pdf", "id.png", "rosa@elyukal.ph"} {
		if !strings.Contains(sent, want) {
			t.Fatalf("expected %q in the upload", want)
		}
	}
	if strings.Contains(sent, "confirm_password") {
		t.Fatal("the confirmation field stays in the dashboard")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(cookies) != 0 {
		t.Fatalf("applications go out without a session, got cookies %v", cookies)
	}
	left, err := h.deps.Staging.List(sid, "apply:new")
	if err != nil || len(left) != 0 {
		t.Fatalf("expected staging released, got %d files (%v)", len(left), err)
	}
}

func TestSellerApplicationPasswordsMustMatch(t *testing.T) {
	h := newHarness(t)
	sid := cookieValue(h.get(t, "/seller-login/apply", ""), "sid")

	form := applicationFields()
	form.Set("confirm_password", "Passw0rd?")
	resp := h.postMultipart(t, "/seller-login/apply", sid, form)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := bodyOf(t, resp); !strings.Contains(body, "Password confirmation must match Password") {
		t.Fatalf("expected the mismatch error, got %q", body)
	}
}
