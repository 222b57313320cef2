package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contact-log-api/internal/middleware"
	"github.com/noah-isme/contact-log-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pageParams reads page and page_size, leaving zero for absent or malformed values so services apply defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return page, size
}
