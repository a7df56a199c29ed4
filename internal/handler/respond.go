package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mitea/boba-platform-api/internal/dto"
)

// Every endpoint answers with the same envelope so the frontend can read
// success/data/message/pagination uniformly.

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.Envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: message})
}

func respondList(c *gin.Context, data any, pagination dto.Pagination) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data, Pagination: &pagination})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Envelope{Success: false, Message: message})
}
