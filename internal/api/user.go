package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// UserHandler serves user profiles and subscriptions.
type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	tokens        middleware.TokenValidator
	projector     *projector
	pageSize      int
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		users:         deps.Users,
		subscriptions: deps.Subscriptions,
		tokens:        deps.Tokens,
		projector:     &projector{images: deps.Images},
		pageSize:      deps.PageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	views, total, err := h.users.ListUsers(ctx, middleware.CurrentActor(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := pageResponse(c, page, total, h.projector.project(ctx, OpListUsers, views))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.users.Me(ctx, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.project(ctx, OpMe, view))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	view, err := h.users.GetUser(ctx, middleware.CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.project(ctx, OpGetUser, view))
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	views, total, err := h.subscriptions.ListSubscriptions(ctx, middleware.CurrentActor(c), page, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := pageResponse(c, page, total, h.projector.project(ctx, OpListSubscriptions, views))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := parseID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	view, err := h.subscriptions.Subscribe(ctx, middleware.CurrentActor(c), id, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.projector.project(ctx, OpSubscribe, view))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads recipes_limit. Anything but a positive integer means no cap.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
