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

func createLeadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewLead
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lead, err := models.CreateLead(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "main", "createLeadHandler", "creating lead", input.Email, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusCreated, lead)
	}
}

func getLeadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		lead, err := models.GetLead(c.Request.Context(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "getLeadHandler", "fetching lead", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, lead)
	}
}

func listLeadsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := listParams(c)
		if !ok {
			return
		}

		leads, total, err := models.ListLeads(c.Request.Context(), q)
		if err != nil {
			config.LogError(logger, "main", "listLeadsHandler", "listing leads", q.Filter, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": leads, "total": total})
	}
}

func updateLeadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input models.NewLead
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lead, err := models.UpdateLead(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "updateLeadHandler", "updating lead", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusOK, lead)
	}
}

func deleteLeadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		deleted, err := models.DeleteLead(c.Request.Context(), id)
		if err != nil {
			config.LogError(logger, "main", "deleteLeadHandler", "deleting lead", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
