package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// pagination reads limit and offset query parameters. Invalid values fall
// back to the repository defaults.
func pagination(c *gin.Context) (limit, offset int) {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
