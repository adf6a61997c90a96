package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/services"
	"github.com/light-bringer/catalog-engine/internal/testutil"
	transporthttp "github.com/light-bringer/catalog-engine/internal/transport/http"
)

type testServer struct {
	router   *gin.Engine
	store    *memstore.Store
	verifier *auth.TokenVerifier
}

func newTestServer(t *testing.T, opts transporthttp.RouterOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	testutil.SeedCategoryTree(store)
	log, _ := testutil.NullLogger()

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTIssuer:         "catalog-engine",
		CandidateCeiling:  1000,
		SearchLimit:       50,
		EnrichConcurrency: 4,
		DefaultPageSize:   12,
		MaxPageSize:       100,
		SuggestionLimit:   5,
	}
	app := services.New(cfg, log, testutil.NewMockClock(), services.MemoryBackend(store))

	opts.Verifier = app.Verifier
	opts.Log = log
	handler := transporthttp.NewHandler(app.Commands, app.Queries, log)

	return &testServer{
		router:   transporthttp.NewRouter(handler, opts),
		store:    store,
		verifier: app.Verifier,
	}
}

func (s *testServer) token(t *testing.T, p *auth.Principal) string {
	t.Helper()
	token, err := s.verifier.Issue(p.Subject, p.Role, time.Now(), time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type productBody struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Status      string  `json:"status"`
	PublishedAt *string `json:"publishedAt"`
	BasePrice   int64   `json:"basePrice"`
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})

	w := s.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"no token", "", http.StatusUnauthorized, transporthttp.CodeUnauthenticated},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized, transporthttp.CodeUnauthenticated},
		{"shopper token", s.token(t, testutil.Shopper()), http.StatusForbidden, transporthttp.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/admin/products", tt.token, map[string]any{
				"name":      "Oak Table",
				"basePrice": 1000,
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode[transporthttp.ErrorBody](t, w).Code)
		})
	}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/products", "", nil).Code)
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	admin := s.token(t, testutil.Admin())

	// Create as draft
	w := s.do(t, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"name":       "Oak Table",
		"basePrice":  45000,
		"categoryId": testutil.CategorySofas,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[productBody](t, w)
	assert.Equal(t, "oak-table", created.Slug)
	assert.Equal(t, "draft", created.Status)
	assert.Nil(t, created.PublishedAt)

	count := func(query string) int64 {
		w := s.do(t, http.MethodGet, "/api/v1/admin/products/count"+query, admin, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[struct {
			Count int64 `json:"count"`
		}](t, w).Count
	}
	assert.Equal(t, int64(1), count("?status=draft"))
	assert.Equal(t, int64(0), count("?status=active"))

	// Drafts are hidden from the storefront
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/products/slug/oak-table", "", nil).Code)

	// Activate
	w = s.do(t, http.MethodPost, "/api/v1/admin/products/"+created.ID+"/activate", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	activated := decode[productBody](t, w)
	assert.Equal(t, "active", activated.Status)
	assert.NotNil(t, activated.PublishedAt)
	assert.Equal(t, int64(1), count("?status=active"))
	assert.Equal(t, int64(0), count("?status=draft"))
	assert.Equal(t, int64(1), count("?categoryId="+testutil.CategorySofas))

	w = s.do(t, http.MethodGet, "/api/v1/products/slug/oak-table", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[productBody](t, w).ID)

	// Partial update
	w = s.do(t, http.MethodPatch, "/api/v1/admin/products/"+created.ID, admin, map[string]any{"basePrice": 39900})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(39900), decode[productBody](t, w).BasePrice)

	// Archive
	w = s.do(t, http.MethodPost, "/api/v1/admin/products/"+created.ID+"/archive", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "archived", decode[productBody](t, w).Status)
	assert.Equal(t, int64(1), count("?status=archived"))
	assert.Equal(t, int64(1), count(""))

	// Delete
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/admin/products/"+created.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID, admin, nil).Code)
	assert.Equal(t, int64(0), count(""))
}

func TestCreateProduct_Rejects(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	admin := s.token(t, testutil.Admin())

	w := s.do(t, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"name":      "Linen Throw",
		"slug":      "linen-throw",
		"basePrice": 2500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "missing price",
			body:       map[string]any{"name": "Lamp"},
			wantStatus: http.StatusBadRequest,
			wantCode:   transporthttp.CodeValidation,
			wantField:  "basePrice",
		},
		{
			name:       "malformed slug",
			body:       map[string]any{"name": "Lamp", "basePrice": 100, "slug": "Bad Slug"},
			wantStatus: http.StatusBadRequest,
			wantCode:   transporthttp.CodeValidation,
			wantField:  "slug",
		},
		{
			name:       "archived on create",
			body:       map[string]any{"name": "Lamp", "basePrice": 100, "status": "archived"},
			wantStatus: http.StatusBadRequest,
			wantCode:   transporthttp.CodeValidation,
			wantField:  "status",
		},
		{
			name:       "blank name",
			body:       map[string]any{"name": "   ", "basePrice": 100},
			wantStatus: http.StatusBadRequest,
			wantCode:   transporthttp.CodeBadRequest,
		},
		{
			name:       "slug already used",
			body:       map[string]any{"name": "Other", "basePrice": 100, "slug": "linen-throw"},
			wantStatus: http.StatusConflict,
			wantCode:   transporthttp.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/admin/products", admin, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decode[transporthttp.ErrorBody](t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantField != "" {
				require.NotEmpty(t, body.Details)
				assert.Equal(t, tt.wantField, body.Details[0].Field)
			}
		})
	}
}

func TestFilterProducts(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	testutil.NewProductBuilder("sofa-red").WithCategory(testutil.CategorySofas).WithColors("Red").WithPrice(90000).CreatedMinutesAfterBase(1).Put(s.store)
	testutil.NewProductBuilder("sofa-blue").WithCategory(testutil.CategorySofas).WithColors("Blue").WithPrice(70000).CreatedMinutesAfterBase(2).Put(s.store)
	testutil.NewProductBuilder("rug-red").WithCategory(testutil.CategoryLiving).WithColors("Red").WithPrice(20000).CreatedMinutesAfterBase(3).Put(s.store)
	testutil.NewProductBuilder("bench").WithCategory(testutil.CategoryGarden).WithColors("Red").CreatedMinutesAfterBase(4).Put(s.store)
	testutil.NewProductBuilder("sofa-draft").WithCategory(testutil.CategorySofas).WithStatus(domain.StatusDraft).CreatedMinutesAfterBase(5).Put(s.store)

	type result struct {
		Products   []productBody `json:"products"`
		TotalItems int           `json:"totalItems"`
		HasMore    bool          `json:"hasMore"`
	}
	slugs := func(r result) []string {
		out := make([]string, 0, len(r.Products))
		for _, p := range r.Products {
			out = append(out, p.Slug)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"descendants newest first", "?category=home", []string{"rug-red", "sofa-blue", "sofa-red"}},
		{"price ascending alias", "?category=home&sort=price-asc", []string{"rug-red", "sofa-blue", "sofa-red"}},
		{"price descending", "?category=home&sort=price_desc", []string{"sofa-red", "sofa-blue", "rug-red"}},
		{"comma separated colors", "?category=living-room&colors=red,green", []string{"rug-red", "sofa-red"}},
		{"price range", "?minPrice=50000&maxPrice=80000", []string{"sofa-blue"}},
		{"unknown category is empty", "?category=kitchen", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/products"+tt.query, "", nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			r := decode[result](t, w)
			assert.Equal(t, tt.want, slugs(r))
			assert.Equal(t, len(tt.want), r.TotalItems)
		})
	}

	t.Run("page and limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?limit=2&page=1", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		r := decode[result](t, w)
		assert.Equal(t, []string{"bench", "rug-red"}, slugs(r))
		assert.Equal(t, 4, r.TotalItems)
		assert.True(t, r.HasMore)
	})

	t.Run("unknown sort key", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products?sort=cheapest", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, transporthttp.CodeValidation, decode[transporthttp.ErrorBody](t, w).Code)
	})
}

func TestStorefront_HidesUnpublishedProducts(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	testutil.NewProductBuilder("desk").WithName("Desk Lamp").CreatedMinutesAfterBase(1).Put(s.store)
	testutil.NewProductBuilder("secret").WithName("Secret Lamp").WithStatus(domain.StatusDraft).CreatedMinutesAfterBase(2).Put(s.store)
	testutil.NewProductBuilder("old").WithName("Old Lamp").WithStatus(domain.StatusArchived).CreatedMinutesAfterBase(3).Put(s.store)
	admin := s.token(t, testutil.Admin())

	type searchResult struct {
		Products []productBody `json:"products"`
	}
	type countResult struct {
		Count int64 `json:"count"`
	}

	t.Run("anonymous search", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/search?q=lamp", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[searchResult](t, w).Products
		require.Len(t, got, 1)
		assert.Equal(t, "desk", got[0].ID)
		assert.Equal(t, "active", got[0].Status)
	})

	t.Run("anonymous count", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/count?search=lamp", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), decode[countResult](t, w).Count)
	})

	t.Run("explicit active is accepted", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/search?q=lamp&status=active", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[searchResult](t, w).Products, 1)
	})

	for _, path := range []string{
		"/api/v1/products/search?q=lamp&status=draft",
		"/api/v1/products/search?q=lamp&status=archived",
		"/api/v1/products/count?status=draft",
		"/api/v1/products/count?search=lamp&status=archived",
	} {
		t.Run("rejects "+path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, path, "", nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotContains(t, w.Body.String(), "Secret Lamp")
		})
	}

	t.Run("admin routes see every status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/products/search?q=lamp", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[searchResult](t, w).Products, 3)

		w = s.do(t, http.MethodGet, "/api/v1/admin/products/count?search=lamp", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(3), decode[countResult](t, w).Count)
	})

	t.Run("admin routes need a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/admin/products/search?q=lamp", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/admin/products/count", "", nil).Code)
	})
}

func TestSearchAndSuggestions(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	testutil.NewProductBuilder("velvet-sofa").WithName("Velvet Sofa").WithImage("https://img/velvet.jpg").CreatedMinutesAfterBase(1).Put(s.store)
	testutil.NewProductBuilder("velvet-chair").WithName("Velvet Chair").CreatedMinutesAfterBase(2).Put(s.store)
	testutil.NewProductBuilder("velvet-draft").WithName("Velvet Stool").WithStatus(domain.StatusDraft).CreatedMinutesAfterBase(3).Put(s.store)

	t.Run("storefront search sees active only", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/search?q=velvet", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[struct {
			Products []productBody `json:"products"`
		}](t, w).Products, 2)
	})

	t.Run("admin search any status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/products/search?q=velvet", s.token(t, testutil.Admin()), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[struct {
			Products []productBody `json:"products"`
		}](t, w).Products, 3)
	})

	t.Run("admin search by status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/products/search?q=velvet&status=draft", s.token(t, testutil.Admin()), nil)

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			Products []productBody `json:"products"`
		}](t, w).Products
		require.Len(t, got, 1)
		assert.Equal(t, "velvet-draft", got[0].ID)
	})

	t.Run("blank search", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/search", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"products":[]}`, w.Body.String())
	})

	t.Run("suggestions skip drafts", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/products/suggestions?q=velvet&limit=10", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			Suggestions []struct {
				Slug  string `json:"slug"`
				Image string `json:"image"`
			} `json:"suggestions"`
		}](t, w).Suggestions
		require.Len(t, got, 2)
		for _, sg := range got {
			assert.NotEqual(t, "velvet-draft", sg.Slug)
		}
	})
}

func TestListProducts_Cursor(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	admin := s.token(t, testutil.Admin())
	for i, id := range []string{"p-1", "p-2", "p-3"} {
		testutil.NewProductBuilder(id).CreatedMinutesAfterBase(i).Put(s.store)
	}

	type page struct {
		Page []productBody `json:"page"`
		Next string        `json:"continuationCursor"`
		Done bool          `json:"isDone"`
	}

	w := s.do(t, http.MethodGet, "/api/v1/admin/products?pageSize=2&status=active", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[page](t, w)
	require.Len(t, first.Page, 2)
	assert.Equal(t, "p-3", first.Page[0].ID)
	assert.False(t, first.Done)
	require.NotEmpty(t, first.Next)

	w = s.do(t, http.MethodGet, "/api/v1/admin/products?pageSize=2&status=active&cursor="+first.Next, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[page](t, w)
	require.Len(t, second.Page, 1)
	assert.Equal(t, "p-1", second.Page[0].ID)
	assert.True(t, second.Done)

	w = s.do(t, http.MethodGet, "/api/v1/admin/products?cursor=!!!", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, transporthttp.CodeBadRequest, decode[transporthttp.ErrorBody](t, w).Code)
}

func TestSyncFailuresAndBackfill(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{})
	admin := s.token(t, testutil.Admin())

	s.store.InjectCounterFault(func(op string, _ domain.CountKey) error {
		if op == "insert" {
			return errors.New("counter unavailable")
		}
		return nil
	})
	w := s.do(t, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{"name": "Stool", "basePrice": 1500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.store.InjectCounterFault(nil)

	type events struct {
		Events []struct {
			EventType string          `json:"eventType"`
			Status    string          `json:"status"`
			Payload   json.RawMessage `json:"payload"`
		} `json:"events"`
		TotalCount int `json:"totalCount"`
	}

	w = s.do(t, http.MethodGet, "/api/v1/admin/maintenance/sync-failures", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pending := decode[events](t, w)
	require.Equal(t, 1, pending.TotalCount)
	assert.Equal(t, domain.EventTypeCountSyncFailed, pending.Events[0].EventType)
	assert.True(t, json.Valid(pending.Events[0].Payload))

	// Dry run reports without fixing
	w = s.do(t, http.MethodPost, "/api/v1/admin/maintenance/backfill-counters", admin, map[string]any{"dryRun": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dry := decode[struct {
		Missing int  `json:"missing"`
		DryRun  bool `json:"dryRun"`
	}](t, w)
	assert.Equal(t, 1, dry.Missing)
	assert.True(t, dry.DryRun)

	w = s.do(t, http.MethodPost, "/api/v1/admin/maintenance/backfill-counters", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[struct {
		Inserted int `json:"inserted"`
	}](t, w).Inserted)

	w = s.do(t, http.MethodGet, "/api/v1/admin/maintenance/sync-failures", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[events](t, w).TotalCount)

	w = s.do(t, http.MethodGet, "/api/v1/admin/products/count?status=draft", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	s := newTestServer(t, transporthttp.RouterOptions{RateLimitPerSecond: 0.001, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", nil).Code)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, transporthttp.CodeRateLimited, decode[transporthttp.ErrorBody](t, w).Code)
}
