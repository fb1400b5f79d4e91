package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListBuyers(c *gin.Context) {
	resp, err := s.buyerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBuyerByGSTIN(c *gin.Context) {
	resp, err := s.buyerSvc.GetByGSTIN(c.Request.Context(), c.Param("gstin"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
