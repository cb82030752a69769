package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	prompts := NewDomainGroup("prompt", "/prompts")
	prompts.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.Register(prompts)
	r.Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prompts", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	called := false
	r.Use(func(c *gin.Context) {
		called = true
		c.Next()
	})

	group := NewDomainGroup("billing", "/billing")
	group.GET("/balance", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.Register(group)
	r.Setup()

	// Engine-level routes bypass router middleware
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/balance", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	called = false
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestDomainGroupRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	handler := func(c *gin.Context) { c.Status(http.StatusOK) }

	communities := NewDomainGroup("community", "/communities")
	communities.
		GET("", handler).
		POST("", handler).
		GET("/:id", handler).
		PUT("/:id", handler).
		PATCH("/:id", handler).
		DELETE("/:id", handler)

	r.Register(communities)
	r.Setup()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/communities"},
		{http.MethodPost, "/api/v1/communities"},
		{http.MethodGet, "/api/v1/communities/abc"},
		{http.MethodPut, "/api/v1/communities/abc"},
		{http.MethodPatch, "/api/v1/communities/abc"},
		{http.MethodDelete, "/api/v1/communities/abc"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestDomainGroupSubgroup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	communities := NewDomainGroup("community", "/communities")
	invites := communities.Group("invite", "/:id/invites")
	invites.POST("", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	r.Register(communities)
	r.Setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/communities/abc/invites", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("admin", "/admin")
	group.Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	})
	group.GET("/payouts", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/payouts", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDomainGroupAccessors(t *testing.T) {
	group := NewDomainGroup("marketplace", "/marketplace")
	assert.Equal(t, "marketplace", group.Name())
	assert.Equal(t, "/marketplace", group.Prefix())
}
