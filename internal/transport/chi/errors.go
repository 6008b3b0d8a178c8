package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeParcelNotFound      ErrorCode = "parcel_not_found"
	CodeUnsupportedGeometry ErrorCode = "unsupported_geometry"
	CodeInvalidSplit        ErrorCode = "invalid_split"
	CodeTileNotFound        ErrorCode = "tile_not_found"
	CodeTilesDisabled       ErrorCode = "tiles_disabled"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeRateLimited         ErrorCode = "rate_limited"
	CodeNotFound            ErrorCode = "not_found"
	CodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrParcelNotFound, http.StatusNotFound, CodeParcelNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSplit, http.StatusBadRequest, CodeInvalidSplit),
		sentinelHandler(domain.ErrUnsupportedGeometry, http.StatusUnprocessableEntity, CodeUnsupportedGeometry),
		sentinelHandler(domain.ErrTileNotFound, http.StatusNotFound, CodeTileNotFound),
		sentinelHandler(domain.ErrTilesDisabled, http.StatusNotFound, CodeTilesDisabled),
	}
}

// sentinelHandler answers with the full error text: domain errors in this service carry
// only request values (keys, coordinates, areas), never infrastructure details.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger(r).Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger(r).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
