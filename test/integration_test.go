package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/biv3k224/ecommerce/internal/domain"
)

func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("Expected 'ok', got '%s'", string(body))
	}
}

func TestRegisterLoginAndValidate(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	registerBody := `{"username":"alice","email":"alice@example.com","password":"s3cretpass"}`
	resp, err := http.Post(server.URL()+"/api/auth/register", "application/json",
		bytes.NewBufferString(registerBody))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	loginBody := `{"username":"alice","password":"s3cretpass"}`
	resp, err = http.Post(server.URL()+"/api/auth/login", "application/json",
		bytes.NewBufferString(loginBody))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var login struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected token in login response")
	}
	if login.Message != "Login successful" {
		t.Errorf("unexpected message %q", login.Message)
	}

	resp, err = http.Post(server.URL()+"/api/auth/validate?token="+login.Token, "application/json", nil)
	if err != nil {
		t.Fatalf("validate request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var validation struct {
		Valid    bool   `json:"valid"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		t.Fatalf("decode validate response: %v", err)
	}
	if !validation.Valid || validation.Username != "alice" {
		t.Errorf("unexpected validation result: %+v", validation)
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	server.RegisterAndLogin(t, "alice", "s3cretpass", "")

	resp, err := http.Post(server.URL()+"/api/auth/login", "application/json",
		bytes.NewBufferString(`{"username":"alice","password":"wrong"}`))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestAdminRequiresToken(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/api/admin/products")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestViewerCannotMutate(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "viewer", "s3cretpass", "viewer")

	req, _ := http.NewRequest(http.MethodPost, server.URL()+"/api/admin/products",
		bytes.NewBufferString(`{"name":"Widget","price":1}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusForbidden)
}

func adminRequest(t *testing.T, server *TestServerHelper, token, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, server.URL()+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestProductLifecycle(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	// Create
	resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products",
		`{"name":"Widget","description":"A widget","category":"tools","price":9.99,"quantity":5}`)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	var created domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected product id")
	}
	if !created.Available {
		t.Error("expected availability to default to true")
	}

	// Duplicate name rejected
	resp = adminRequest(t, server, token, http.MethodPost, "/api/admin/products",
		`{"name":"Widget","price":1}`)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)

	// Publicly visible
	pubResp, err := http.Get(server.URL() + "/api/public/products/" + created.ID)
	if err != nil {
		t.Fatalf("public get failed: %v", err)
	}
	pubResp.Body.Close()
	AssertStatusCode(t, pubResp, http.StatusOK)

	// Update
	resp = adminRequest(t, server, token, http.MethodPut, "/api/admin/products/"+created.ID,
		`{"name":"Widget","description":"Improved","category":"tools","price":12.5,"quantity":7,"available":true}`)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var updated domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.Price != 12.5 || updated.Quantity != 7 {
		t.Errorf("update not applied: %+v", updated)
	}

	// Hide via availability patch
	resp = adminRequest(t, server, token, http.MethodPatch,
		"/api/admin/products/"+created.ID+"/availability?available=false", "")
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	// Hidden from the public listing
	pubResp, err = http.Get(server.URL() + "/api/public/products")
	if err != nil {
		t.Fatalf("public list failed: %v", err)
	}
	defer pubResp.Body.Close()
	var listed []domain.Product
	if err := json.NewDecoder(pubResp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode public list: %v", err)
	}
	for _, p := range listed {
		if p.ID == created.ID {
			t.Error("unavailable product leaked into public listing")
		}
	}

	// Delete
	resp = adminRequest(t, server, token, http.MethodDelete, "/api/admin/products/"+created.ID, "")
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	resp = adminRequest(t, server, token, http.MethodDelete, "/api/admin/products/"+created.ID, "")
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":1,"quantity":1}`},
		{"negative price", `{"name":"Widget","price":-1}`},
		{"negative quantity", `{"name":"Widget","price":1,"quantity":-2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products", tc.body)
			resp.Body.Close()
			AssertStatusCode(t, resp, http.StatusBadRequest)
		})
	}
}

func TestPublicPaginationFiltersFirst(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	for i := 0; i < 5; i++ {
		available := "true"
		if i%2 == 1 {
			available = "false"
		}
		body := fmt.Sprintf(`{"name":"Item %d","category":"misc","price":1,"quantity":1,"available":%s}`, i, available)
		resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products", body)
		resp.Body.Close()
		AssertStatusCode(t, resp, http.StatusCreated)
	}

	// 3 available items; a page of 2 must report total 3 across 2 pages.
	resp, err := http.Get(server.URL() + "/api/public/products/page?page=0&size=2")
	if err != nil {
		t.Fatalf("paged request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var page domain.ProductPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalItems != 3 {
		t.Errorf("expected 3 total available items, got %d", page.TotalItems)
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", page.TotalPages)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 items on first page, got %d", len(page.Items))
	}
	for _, p := range page.Items {
		if !p.Available {
			t.Errorf("unavailable product in available page: %+v", p)
		}
	}
}

func TestPublicFilterEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	seed := []string{
		`{"name":"Anvil","category":"tools","price":50,"quantity":3}`,
		`{"name":"Bolt","category":"hardware","price":0.5,"quantity":500}`,
		`{"name":"Chisel","category":"tools","price":12,"quantity":8}`,
	}
	for _, body := range seed {
		resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products", body)
		resp.Body.Close()
		AssertStatusCode(t, resp, http.StatusCreated)
	}

	resp, err := http.Get(server.URL() + "/api/public/products/filter?category=tools&minPrice=10")
	if err != nil {
		t.Fatalf("filter request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode filter response: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected Anvil and Chisel, got %d products", len(products))
	}

	// Malformed numeric bound rejected
	resp, err = http.Get(server.URL() + "/api/public/products/filter?minPrice=abc")
	if err != nil {
		t.Fatalf("filter request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestCategoryEndpoints(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	seed := []string{
		`{"name":"Anvil","category":"tools","price":50,"quantity":3}`,
		`{"name":"Bolt","category":"hardware","price":0.5,"quantity":500}`,
		`{"name":"Drill","category":"tools","price":99,"quantity":2,"available":false}`,
	}
	for _, body := range seed {
		resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products", body)
		resp.Body.Close()
		AssertStatusCode(t, resp, http.StatusCreated)
	}

	resp, err := http.Get(server.URL() + "/api/public/products/categories")
	if err != nil {
		t.Fatalf("categories request failed: %v", err)
	}
	defer resp.Body.Close()
	var categories []string
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %v", categories)
	}

	// Public category listing hides the unavailable Drill.
	resp, err = http.Get(server.URL() + "/api/public/products/category/tools")
	if err != nil {
		t.Fatalf("category request failed: %v", err)
	}
	defer resp.Body.Close()
	var tools []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		t.Fatalf("decode category listing: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "Anvil" {
		t.Errorf("unexpected public tools listing: %+v", tools)
	}

	// Admin sees the whole category.
	adminResp := adminRequest(t, server, token, http.MethodGet, "/api/admin/products/category/tools", "")
	defer adminResp.Body.Close()
	var adminTools []domain.Product
	if err := json.NewDecoder(adminResp.Body).Decode(&adminTools); err != nil {
		t.Fatalf("decode admin category listing: %v", err)
	}
	if len(adminTools) != 2 {
		t.Errorf("expected 2 tools for admin, got %d", len(adminTools))
	}

	// Category stats aggregate counts and stock.
	statsResp := adminRequest(t, server, token, http.MethodGet, "/api/admin/products/stats/categories", "")
	defer statsResp.Body.Close()
	var stats []domain.CategorySummary
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	byCategory := make(map[string]domain.CategorySummary)
	for _, s := range stats {
		byCategory[s.Category] = s
	}
	if byCategory["tools"].ProductCount != 2 || byCategory["tools"].TotalStock != 5 {
		t.Errorf("unexpected tools stats: %+v", byCategory["tools"])
	}
}

func TestLowStockEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	seed := []string{
		`{"name":"Anvil","category":"tools","price":50,"quantity":3}`,
		`{"name":"Bolt","category":"hardware","price":0.5,"quantity":500}`,
	}
	for _, body := range seed {
		resp := adminRequest(t, server, token, http.MethodPost, "/api/admin/products", body)
		resp.Body.Close()
	}

	resp := adminRequest(t, server, token, http.MethodGet, "/api/admin/products/low-stock?threshold=10", "")
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode low stock response: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Anvil" {
		t.Errorf("unexpected low stock listing: %+v", products)
	}
}

func TestContentTypeEnforcedOnMutations(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.RegisterAndLogin(t, "admin", "s3cretpass", "admin")

	req, _ := http.NewRequest(http.MethodPost, server.URL()+"/api/admin/products",
		bytes.NewBufferString(`{"name":"Widget","price":1}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnsupportedMediaType)
}
