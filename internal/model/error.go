package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string        `json:"error"`
	Message       string        `json:"message"`
	CorrelationID string        `json:"correlationId,omitempty"`
	Details       []FieldDetail `json:"details,omitempty"`
}

// FieldDetail describes a single rejected request field.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeEmptyCheckout    = "EMPTY_CHECKOUT"
	ErrCodeInvalidPayment   = "INVALID_PAYMENT_METHOD"
	ErrCodePaymentNotFound  = "PAYMENT_NOT_FOUND"
	ErrCodePaymentClosed    = "PAYMENT_CLOSED"
	ErrCodeInvalidProduct   = "INVALID_PRODUCT"
	ErrCodeInvalidStock     = "INVALID_STOCK"
	ErrCodeInvalidStatus    = "INVALID_ORDER_STATUS"
	ErrCodeTooManyImages    = "TOO_MANY_IMAGES"
	ErrCodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeImageTooLarge    = "IMAGE_TOO_LARGE"
	ErrCodePasswordMismatch = "PASSWORD_MISMATCH"
	ErrCodePasswordTooShort = "PASSWORD_TOO_SHORT"
	ErrCodeInvalidPeriod    = "INVALID_PERIOD"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrQuantityBelowOne     = NewDomainError(ErrCodeInvalidQuantity, "Quantity cannot drop below one; remove the item instead")
	ErrCartItemNotFound     = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrEmptyCheckout        = NewDomainError(ErrCodeEmptyCheckout, "There are no items to check out")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPayment, "Payment method must be credit, debit or qr")
	ErrPaymentNotFound      = NewDomainError(ErrCodePaymentNotFound, "Payment not found")
	ErrPaymentClosed        = NewDomainError(ErrCodePaymentClosed, "Payment is no longer pending")
	ErrInvalidProduct       = NewDomainError(ErrCodeInvalidProduct, "Please fill all required fields")
	ErrInvalidStock         = NewDomainError(ErrCodeInvalidStock, "Stock cannot be negative")
	ErrInvalidOrderStatus   = NewDomainError(ErrCodeInvalidStatus, "Order status must be PENDING, COMPLETED or CANCELED")
	ErrTooManyImages        = NewDomainError(ErrCodeTooManyImages, "Too many product images")
	ErrUnsupportedMedia     = NewDomainError(ErrCodeUnsupportedMedia, "Image must be JPEG, PNG, WebP or GIF")
	ErrImageTooLarge        = NewDomainError(ErrCodeImageTooLarge, "Image must be 5 MB or smaller")
	ErrPasswordMismatch     = NewDomainError(ErrCodePasswordMismatch, "Passwords do not match")
	ErrPasswordTooShort     = NewDomainError(ErrCodePasswordTooShort, "Password must be at least 6 characters")
	ErrInvalidPeriod        = NewDomainError(ErrCodeInvalidPeriod, "Unsupported reporting period")
	ErrUnauthorised         = NewDomainError(ErrCodeUnauthorised, "Please log in to continue")
	ErrForbidden            = NewDomainError(ErrCodeForbidden, "You do not have access to this resource")
	ErrInvalidJSON          = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrInvalidID            = NewDomainError(ErrCodeInvalidID, "Invalid identifier")
	ErrNotFound             = NewDomainError(ErrCodeNotFound, "Resource not found")
)
