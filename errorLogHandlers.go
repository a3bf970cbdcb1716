package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/models"
	"github.com/solarpark-se/members_backend/utils"
)

func createErrorLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewErrorLog
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := models.CreateErrorLog(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "main", "createErrorLogHandler", "creating error log", input.MemberId, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func getErrorLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		entry, err := models.GetErrorLog(c.Request.Context(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "error log not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "getErrorLogHandler", "fetching error log", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func listErrorLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := listParams(c)
		if !ok {
			return
		}

		entries, total, err := models.ListErrorLogs(c.Request.Context(), q)
		if err != nil {
			config.LogError(logger, "main", "listErrorLogsHandler", "listing error logs", q.Filter, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries, "total": total})
	}
}

func unresolvedErrorLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, total, err := models.UnresolvedErrorLogs(c.Request.Context())
		if err != nil {
			config.LogError(logger, "main", "unresolvedErrorLogsHandler", "listing unresolved error logs", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries, "total": total})
	}
}

func updateErrorLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input models.NewErrorLog
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := models.UpdateErrorLog(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "error log not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "updateErrorLogHandler", "updating error log", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func deleteErrorLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		deleted, err := models.DeleteErrorLog(c.Request.Context(), id)
		if err != nil {
			config.LogError(logger, "main", "deleteErrorLogHandler", "deleting error log", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "error log not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
