package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solarpark-se/members_backend/models"
)

// idParam reads the :id path parameter. On failure it has already
// written the 400 response; callers just return.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// listParams decodes the react-admin filter/sort/range query strings.
func listParams(c *gin.Context) (models.ListQuery, bool) {
	q, err := models.ParseListQuery(c.Query("filter"), c.Query("sort"), c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	return q, true
}
