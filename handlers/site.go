package handlers

import (
	"net/http"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/layout"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/internal/notification"
	"github.com/coursehub/coursehub-api/internal/order"
	"github.com/coursehub/coursehub-api/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// SiteHandler serves layouts, admin notifications and orders.
type SiteHandler struct {
	layouts       *layout.Service
	notifications *notification.Service
	orders        *order.Service
}

func NewSiteHandler(l *layout.Service, n *notification.Service, o *order.Service) *SiteHandler {
	return &SiteHandler{layouts: l, notifications: n, orders: o}
}

func (h *SiteHandler) Register(rg *gin.RouterGroup, authn *middleware.Authenticator) {
	requireAdmin := middleware.AuthorizeRoles(models.RoleAdmin)

	rg.POST("/create-layout", authn.RequireAuth(), requireAdmin, h.CreateLayout)
	rg.GET("/get-layout/:type", h.GetLayout)
	rg.GET("/get-notifications", authn.RequireAuth(), requireAdmin, h.ListNotifications)
	rg.POST("/create-order", authn.RequireAuth(), h.CreateOrder)
}

func (h *SiteHandler) CreateLayout(c *gin.Context) {
	var req layout.Layout
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.layouts.Create(c.Request.Context(), &req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Layout created successfully"})
}

func (h *SiteHandler) GetLayout(c *gin.Context) {
	l, err := h.layouts.Get(c.Request.Context(), c.Param("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "layout": l})
}

func (h *SiteHandler) ListNotifications(c *gin.Context) {
	list, err := h.notifications.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list})
}

func (h *SiteHandler) CreateOrder(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		fail(c, apperrors.ErrUnauthenticated)
		return
	}
	var req struct {
		CourseID    string                 `json:"courseId"`
		PaymentInfo map[string]interface{} `json:"payment_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	o, err := h.orders.Create(c.Request.Context(), p.UserID, req.CourseID, req.PaymentInfo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": o})
}
