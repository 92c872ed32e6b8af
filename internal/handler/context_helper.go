package handler

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/middleware"
	"github.com/rmn-lab/roster-api/internal/models"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
)

// screenshotNamePattern rejects anything that could traverse out of the
// seat directory. Capture filenames only ever contain word characters,
// a dash and the extension.
var screenshotNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.(png|jpg|jpeg)$`)

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

// seatParam parses the :seat path segment into a seat number.
func seatParam(c *gin.Context) (int, error) {
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil || seat < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid seat number")
	}
	return seat, nil
}
