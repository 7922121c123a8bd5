package domains

import (
	"context"

	"github.com/gin-gonic/gin"

	"vhostmgr/internal/domainutil"
	"vhostmgr/internal/httpx"
	"vhostmgr/internal/manager"
)

// Service is the domain manager as seen by the HTTP layer
type Service interface {
	ListDomains(ctx context.Context) ([]manager.DomainRecord, error)
	GetStats(ctx context.Context) (manager.Stats, error)
	AddDomain(ctx context.Context, name string, installSSL bool) manager.Result
	DeleteDomain(ctx context.Context, name string) manager.Result
	InstallSSL(ctx context.Context, name string, force bool) manager.Result
	PrepareSSL(ctx context.Context, name string) manager.Result
}

// Handler serves /api/v1/domains
type Handler struct {
	svc Service
}

// NewHandler creates a domains handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/domains
func (h *Handler) List(c *gin.Context) {
	records, err := h.svc.ListDomains(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to list domains", err))
		return
	}
	if records == nil {
		records = []manager.DomainRecord{}
	}

	httpx.OK(c, ListResponse{Items: records, Total: len(records)})
}

// Stats handles GET /api/v1/domains/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to compute stats", err))
		return
	}

	httpx.OK(c, stats)
}

// Create handles POST /api/v1/domains
func (h *Handler) Create(c *gin.Context) {
	var req AddDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("field 'name' is required"))
		return
	}

	name, ok := normalizeName(c, req.Name)
	if !ok {
		return
	}

	httpx.Result(c, h.svc.AddDomain(c.Request.Context(), name, req.InstallSSL))
}

// Delete handles DELETE /api/v1/domains/:name
func (h *Handler) Delete(c *gin.Context) {
	name, ok := normalizeName(c, c.Param("name"))
	if !ok {
		return
	}

	httpx.Result(c, h.svc.DeleteDomain(c.Request.Context(), name))
}

// InstallSSL handles POST /api/v1/domains/:name/ssl
func (h *Handler) InstallSSL(c *gin.Context) {
	name, ok := normalizeName(c, c.Param("name"))
	if !ok {
		return
	}

	var req InstallSSLRequest
	// empty body means no force
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}
	}

	httpx.Result(c, h.svc.InstallSSL(c.Request.Context(), name, req.Force))
}

// PrepareSSL handles POST /api/v1/domains/:name/prepare-ssl
func (h *Handler) PrepareSSL(c *gin.Context) {
	name, ok := normalizeName(c, c.Param("name"))
	if !ok {
		return
	}

	httpx.Result(c, h.svc.PrepareSSL(c.Request.Context(), name))
}

// normalizeName trims and lower-cases a domain from the dashboard. It writes
// the error response itself and reports false when the name is unusable.
func normalizeName(c *gin.Context, raw string) (string, bool) {
	name, err := domainutil.Normalize(raw)
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("Invalid domain name format"))
		return "", false
	}
	return name, true
}
