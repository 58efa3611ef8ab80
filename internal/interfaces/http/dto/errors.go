package dto

import (
	"net/http"
	"strings"
)

// API error codes, always ERR_ prefixed. Domain errors carry the bare code
// and NormalizeErrorCode adds the prefix.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	// the refresh chain hit its rotation limit
	ErrCodeTokenMaxRefresh = "ERR_TOKEN_MAX_REFRESH"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeEmptyCart    = "ERR_EMPTY_CART"

	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeInvalidSession      = "ERR_INVALID_SESSION"
	ErrCodeFileNotFound        = "ERR_FILE_NOT_FOUND"
	ErrCodeUnsupportedFileType = "ERR_UNSUPPORTED_FILE_TYPE"
	ErrCodeFileTooLarge        = "ERR_FILE_TOO_LARGE"
	ErrCodePayloadTooLarge     = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

var codeStatus = func() map[string]int {
	byStatus := map[int][]string{
		http.StatusBadRequest: {
			ErrCodeValidation, ErrCodeValidationRequired, ErrCodeValidationFormat,
			ErrCodeValidationRange, ErrCodeValidationLength, ErrCodeBadRequest,
			ErrCodeInvalidInput, ErrCodeInvalidJSON, ErrCodeInvalidSession,
			ErrCodeFileNotFound, ErrCodeUnsupportedFileType,
		},
		http.StatusUnauthorized: {
			ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeTokenExpired,
			ErrCodeTokenInvalid, ErrCodeTokenRevoked, ErrCodeTokenMaxRefresh,
		},
		http.StatusForbidden:             {ErrCodeForbidden},
		http.StatusNotFound:              {ErrCodeNotFound},
		http.StatusConflict:              {ErrCodeAlreadyExists, ErrCodeConflict},
		http.StatusRequestEntityTooLarge: {ErrCodeFileTooLarge, ErrCodePayloadTooLarge},
		http.StatusUnprocessableEntity:   {ErrCodeInvalidState, ErrCodeEmptyCart},
		http.StatusTooManyRequests:       {ErrCodeRateLimited},
		http.StatusInternalServerError:   {ErrCodeUnknown, ErrCodeInternal},
	}
	m := make(map[string]int)
	for status, codes := range byStatus {
		for _, code := range codes {
			m[code] = status
		}
	}
	return m
}()

// GetHTTPStatus maps an API code to its status. Unlisted ERR_INVALID_*
// codes are field errors from the domain and get 400; anything else 500.
func GetHTTPStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// domain codes whose API name is not just ERR_<code>
var codeAliases = map[string]string{
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
	"TOKEN_EXPIRED":    ErrCodeTokenExpired,
	"TOKEN_INVALID":    ErrCodeTokenInvalid,
}

func NormalizeErrorCode(code string) string {
	switch alias, ok := codeAliases[code]; {
	case ok:
		return alias
	case code == "":
		return ErrCodeUnknown
	case strings.HasPrefix(code, "ERR_"):
		return code
	}
	return "ERR_" + code
}
