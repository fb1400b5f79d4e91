package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	buyerdomain "github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	sellerdomain "github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type stockErrorPayload struct {
	Reason      string          `json:"reason"`
	ProductID   string          `json:"product_id"`
	Description string          `json:"description,omitempty"`
	Required    decimal.Decimal `json:"required"`
	Available   decimal.Decimal `json:"available"`
}

type errorPayload struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Errors  []ValidationError  `json:"errors,omitempty"`
	Stock   *stockErrorPayload `json:"stock,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var invoiceErrs *invoicedomain.ValidationErrors
	if errors.As(err, &invoiceErrs) && invoiceErrs != nil {
		fields := make([]ValidationError, 0, len(invoiceErrs.Errors))
		for _, fe := range invoiceErrs.Errors {
			message := fe.Details
			if message == "" {
				message = "invalid value"
			}
			fields = append(fields, ValidationError{
				Field:   fe.Field,
				Code:    fe.Err.Error(),
				Message: message,
			})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	var stockErr *stockdomain.StockError
	if errors.As(err, &stockErr) && stockErr != nil {
		return http.StatusConflict, errorPayload{
			Type:    "stock_error",
			Message: stockErr.Error(),
			Stock: &stockErrorPayload{
				Reason:      string(stockErr.Reason),
				ProductID:   stockErr.ProductID,
				Description: stockErr.Description,
				Required:    stockErr.Required,
				Available:   stockErr.Available,
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, invoicedomain.ErrInvalidSeller),
		errors.Is(err, stockdomain.ErrInvalidSeller),
		errors.Is(err, buyerdomain.ErrInvalidSeller),
		errors.Is(err, sellerdomain.ErrInvalidSeller):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "seller required",
		}
	case errors.Is(err, invoicedomain.ErrDuplicateInvoiceNumber),
		errors.Is(err, invoicedomain.ErrGenerationInProgress),
		errors.Is(err, stockdomain.ErrDuplicateCode):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, invoicedomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if payload.Stock != nil {
		code = payload.Stock.Reason
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, buyerdomain.ErrInvalidName),
		errors.Is(err, sellerdomain.ErrInvalidName),
		errors.Is(err, sellerdomain.ErrInvalidGSTIN):
		return true
	case isStockValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, stockdomain.ErrNotFound),
		errors.Is(err, buyerdomain.ErrNotFound),
		errors.Is(err, sellerdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
