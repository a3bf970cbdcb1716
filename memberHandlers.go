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

func createMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMember
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		member, err := models.CreateMember(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "main", "createMemberHandler", "creating member", input.Email, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusCreated, member)
	}
}

func getMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		member, err := models.GetMember(c.Request.Context(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "getMemberHandler", "fetching member", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

func listMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := listParams(c)
		if !ok {
			return
		}

		members, total, err := models.ListMembers(c.Request.Context(), q)
		if err != nil {
			config.LogError(logger, "main", "listMembersHandler", "listing members", q.Filter, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": members, "total": total})
	}
}

func updateMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input models.NewMember
		if err := c.ShouldBindJSON(&input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		member, err := models.UpdateMember(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		if err != nil {
			config.LogError(logger, "main", "updateMemberHandler", "updating member", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

func deleteMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		deleted, err := models.DeleteMember(c.Request.Context(), id)
		if err != nil {
			config.LogError(logger, "main", "deleteMemberHandler", "deleting member", id, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.IntegrityErrorMessage(err, err.Error())})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
