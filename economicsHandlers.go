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

func createEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEconomics
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eco, err := models.CreateEconomics(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "main", "createEconomicsHandler", "creating economics", input.MemberId, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusCreated, eco)
	}
}

func getEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		eco, err := models.GetEconomics(c.Request.Context(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "economics not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "getEconomicsHandler", "fetching economics", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, eco)
	}
}

func memberEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberId, ok := idParam(c, "member_id")
		if !ok {
			return
		}

		eco, err := models.GetEconomicsByMember(c.Request.Context(), memberId)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "economics not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "memberEconomicsHandler", "fetching member economics", memberId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, eco)
	}
}

func listEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := listParams(c)
		if !ok {
			return
		}

		records, total, err := models.ListEconomics(c.Request.Context(), q)
		if err != nil {
			config.LogError(logger, "main", "listEconomicsHandler", "listing economics", q.Filter, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records, "total": total})
	}
}

func updateEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input models.NewEconomics
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eco, err := models.UpdateEconomics(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "economics not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "updateEconomicsHandler", "updating economics", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusOK, eco)
	}
}

func deleteEconomicsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		deleted, err := models.DeleteEconomics(c.Request.Context(), id)
		if err != nil {
			config.LogError(logger, "main", "deleteEconomicsHandler", "deleting economics", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "economics not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
