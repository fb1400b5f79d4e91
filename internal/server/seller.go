package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	sellerdomain "github.com/mslabba/gst-invoice-generator/internal/seller/domain"
)

func (s *Server) GetProfile(c *gin.Context) {
	resp, err := s.sellerSvc.GetProfile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveProfile(c *gin.Context) {
	var req sellerdomain.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sellerSvc.SaveProfile(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
