package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req stockdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.stockSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Category string `form:"category"`
		Stock    string `form:"stock"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stockFilter := stockdomain.StockFilter(strings.ToLower(strings.TrimSpace(query.Stock)))
	switch stockFilter {
	case stockdomain.StockFilterAll, stockdomain.StockFilterLow, stockdomain.StockFilterOutOfStock:
	default:
		AbortWithError(c, newValidationError("stock", "invalid_stock_filter", "stock must be low or out"))
		return
	}

	resp, err := s.stockSvc.List(c.Request.Context(), stockdomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		Category: strings.TrimSpace(query.Category),
		Stock:    stockFilter,
		SortBy:   strings.TrimSpace(query.SortBy),
		OrderBy:  strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.stockSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req stockdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.stockSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.stockSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateProductStock(c *gin.Context) {
	var req stockdomain.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.stockSvc.UpdateStock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CheckProductAvailability(c *gin.Context) {
	quantity, err := parseRequiredDecimal(c.Query("quantity"))
	if err != nil {
		AbortWithError(c, newValidationError("quantity", "invalid_quantity", "quantity must be a number"))
		return
	}

	resp, err := s.stockSvc.CheckAvailability(c.Request.Context(), strings.TrimSpace(c.Param("id")), quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductMovements(c *gin.Context) {
	resp, err := s.stockSvc.Movements(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isStockValidationError(err error) bool {
	switch err {
	case stockdomain.ErrInvalidID,
		stockdomain.ErrInvalidCode,
		stockdomain.ErrInvalidName,
		stockdomain.ErrInvalidUnitPrice,
		stockdomain.ErrInvalidGSTRate,
		stockdomain.ErrInvalidStock,
		stockdomain.ErrInvalidQuantity,
		stockdomain.ErrInvalidOperation:
		return true
	default:
		return false
	}
}
