package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/models"
	"github.com/solarpark-se/members_backend/utils"
	"github.com/solarpark-se/members_backend/workflow"
)

func createDividendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDividend
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dividend, err := models.CreateDividend(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "main", "createDividendHandler", "creating dividend", input.PaymentYear, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusCreated, dividend)
	}
}

func getDividendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		dividend, err := models.GetDividend(c.Request.Context(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dividend not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "getDividendHandler", "fetching dividend", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, dividend)
	}
}

func listDividendsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := listParams(c)
		if !ok {
			return
		}

		dividends, total, err := models.ListDividends(c.Request.Context(), q)
		if err != nil {
			config.LogError(logger, "main", "listDividendsHandler", "listing dividends", q.Filter, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": dividends, "total": total})
	}
}

func updateDividendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input models.NewDividend
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dividend, err := models.UpdateDividend(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dividend not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "updateDividendHandler", "updating dividend", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusOK, dividend)
	}
}

func deleteDividendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		deleted, err := models.DeleteDividend(c.Request.Context(), id)
		if err != nil {
			config.LogError(logger, "main", "deleteDividendHandler", "deleting dividend", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "dividend not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// fulfillDividendHandler validates the preconditions synchronously and
// then hands the run to a background goroutine. The request context dies
// with the response, so the run gets its own.
func fulfillDividendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentYear, err := strconv.Atoi(c.Param("payment_year"))
		if err != nil || paymentYear <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_year"})
			return
		}
		historical := c.Query("is_historical_fulfillment") == "true"

		dividends, err := models.GetDividendByYear(c.Request.Context(), paymentYear)
		if err != nil {
			config.LogError(logger, "main", "fulfillDividendHandler", "fetching dividend", paymentYear, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if len(dividends) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": workflow.ErrNoUniqueDividend.Error()})
			return
		}
		if dividends[0].Completed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dividend already completed"})
			return
		}

		totalMembers, err := models.CountEconomics(c.Request.Context())
		if err != nil {
			config.LogError(logger, "main", "fulfillDividendHandler", "counting economics", paymentYear, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if totalMembers == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "economics not found"})
			return
		}

		go func() {
			fulfillment := workflow.NewFulfillment(workflow.NewGormLedger(config.GetDB()), logger)
			if err := fulfillment.Run(context.Background(), paymentYear, totalMembers, historical); err != nil {
				config.LogError(logger, "main", "fulfillDividendHandler", "running dividend fulfillment", paymentYear, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"message": "dividend fulfillment started in the background"})
	}
}
