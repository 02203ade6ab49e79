package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// storeError maps store-level failures to the API taxonomy: missing rows
// become 404, constraint violations become 409, anything else is a 500.
// Raw driver errors never reach the client.
func storeError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": entity + " already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		c.JSON(http.StatusConflict, gin.H{"error": entity + " is still referenced"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

// parseID reads a uint path parameter, replying 400 on garbage.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return uint(id), true
}
