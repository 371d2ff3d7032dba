package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrRecipeNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrIngredientNotFound, http.StatusNotFound},
	{service.ErrTagNotFound, http.StatusNotFound},
	{errInvalidPage, http.StatusNotFound},
	{service.ErrAlreadyFavorited, http.StatusBadRequest},
	{service.ErrNotFavorited, http.StatusBadRequest},
	{service.ErrAlreadyInCart, http.StatusBadRequest},
	{service.ErrNotInCart, http.StatusBadRequest},
	{service.ErrSelfSubscription, http.StatusBadRequest},
	{service.ErrAlreadySubscribed, http.StatusBadRequest},
	{service.ErrNotSubscribed, http.StatusBadRequest},
}

// respondError writes the status and body for err and aborts the chain.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{verr.Field: []string{verr.Message}})
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.AbortWithStatusJSON(e.status, gin.H{"errors": e.err.Error()})
			return
		}
	}

	logging.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errors": "internal server error"})
}

// respondBindError reports a request body that failed to bind.
func respondBindError(c *gin.Context, err error) {
	if fields := validation.FieldErrors(err); fields != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, fields)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": "malformed request body: " + err.Error()})
}
