package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	favorites     service.IRecipeListService
	shoppingCart  service.IRecipeListService
	shoppingList  service.IShoppingListService
	tokens        middleware.TokenValidator
	createLimiter *middleware.RateLimiter
	modifyLimiter *middleware.RateLimiter
	projector     *projector
	pageSize      int
}

func NewRecipeHandler(deps *Dependencies) *RecipeHandler {
	return &RecipeHandler{
		recipes:       deps.Recipes,
		favorites:     deps.Favorites,
		shoppingCart:  deps.ShoppingCart,
		shoppingList:  deps.ShoppingList,
		tokens:        deps.Tokens,
		createLimiter: deps.CreateLimiter,
		modifyLimiter: deps.ModifyLimiter,
		projector:     &projector{images: deps.Images},
		pageSize:      deps.PageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", required, h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.modifyLimiter.PerRecipeRateLimitMiddleware(), h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.modifyLimiter.PerRecipeRateLimitMiddleware(), h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.addTo(h.favorites, OpAddFavorite))
		recipes.DELETE("/:id/favorite", required, h.removeFrom(h.favorites))
		recipes.POST("/:id/shopping_cart", required, h.addTo(h.shoppingCart, OpAddToCart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeFrom(h.shoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := parseRecipeFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	views, total, err := h.recipes.ListRecipes(ctx, middleware.CurrentActor(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := pageResponse(c, page, total, h.projector.project(ctx, OpListRecipes, views))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	view, err := h.recipes.GetRecipe(ctx, middleware.CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.project(ctx, OpGetRecipe, view))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	view, err := h.recipes.CreateRecipe(ctx, middleware.CurrentActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.projector.project(ctx, OpCreateRecipe, view))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	view, err := h.recipes.UpdateRecipe(ctx, middleware.CurrentActor(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.project(ctx, OpUpdateRecipe, view))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart serves the aggregated ingredients of the cart as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shoppingList.Build(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(items)))
}

func (h *RecipeHandler) addTo(list service.IRecipeListService, op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, service.ErrRecipeNotFound)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		recipe, err := list.Add(ctx, middleware.CurrentActor(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, h.projector.project(ctx, op, recipe))
	}
}

func (h *RecipeHandler) removeFrom(list service.IRecipeListService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, service.ErrRecipeNotFound)
		if !ok {
			return
		}
		if err := list.Remove(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func parseRecipeFilter(c *gin.Context) (types.RecipeFilter, error) {
	var filter types.RecipeFilter
	if raw := c.Query("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, &service.ValidationError{Field: "author", Message: "Must be a valid UUID."}
		}
		filter.AuthorID = &id
	}
	for _, value := range c.QueryArray("tags") {
		for _, slug := range strings.Split(value, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				filter.TagSlugs = append(filter.TagSlugs, slug)
			}
		}
	}
	filter.IsFavorited = truthy(c.Query("is_favorited"))
	filter.IsInShoppingCart = truthy(c.Query("is_in_shopping_cart"))
	return filter, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseID reads the :id path parameter. A malformed id is reported as notFound.
func parseID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}
