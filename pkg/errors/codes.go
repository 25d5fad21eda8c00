package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeMessageQueue       ErrorCode = "COMMON_015"
	ErrCodeStorageError       ErrorCode = "COMMON_016"
)

// Aliases used by call sites that predate the numbered codes.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Policy Module Error Codes
const (
	ErrCodePolicyNotFound     ErrorCode = "POLICY_001"
	ErrCodePolicyNotOwned     ErrorCode = "POLICY_002"
	ErrCodePolicyExpired      ErrorCode = "POLICY_003"
	ErrCodePolicyCountInvalid ErrorCode = "POLICY_004"
	ErrCodePolicyDuplicateID  ErrorCode = "POLICY_005"
	ErrCodePolicyTextMissing  ErrorCode = "POLICY_006"
)

// Comparison Module Error Codes
const (
	ErrCodeComparisonNotFound     ErrorCode = "COMPARISON_001"
	ErrCodeComparisonInputInvalid ErrorCode = "COMPARISON_002"
	ErrCodeComparisonFailed       ErrorCode = "COMPARISON_003"
	ErrCodeInsightsRegenFailed    ErrorCode = "COMPARISON_004"
)

// AI Module Error Codes
const (
	ErrCodeAIUnavailable     ErrorCode = "AI_001"
	ErrCodeAIRequestFailed   ErrorCode = "AI_002"
	ErrCodeAITimeout         ErrorCode = "AI_003"
	ErrCodeAIAnswerMalformed ErrorCode = "AI_004"
	ErrCodeAIDisabled        ErrorCode = "AI_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeMessageQueue:       http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodePolicyNotFound:     http.StatusNotFound,
	ErrCodePolicyNotOwned:     http.StatusNotFound,
	ErrCodePolicyExpired:      http.StatusBadRequest,
	ErrCodePolicyCountInvalid: http.StatusBadRequest,
	ErrCodePolicyDuplicateID:  http.StatusBadRequest,
	ErrCodePolicyTextMissing:  http.StatusInternalServerError,

	ErrCodeComparisonNotFound:     http.StatusNotFound,
	ErrCodeComparisonInputInvalid: http.StatusBadRequest,
	ErrCodeComparisonFailed:       http.StatusInternalServerError,
	ErrCodeInsightsRegenFailed:    http.StatusBadRequest,

	ErrCodeAIUnavailable:     http.StatusServiceUnavailable,
	ErrCodeAIRequestFailed:   http.StatusBadGateway,
	ErrCodeAITimeout:         http.StatusGatewayTimeout,
	ErrCodeAIAnswerMalformed: http.StatusBadGateway,
	ErrCodeAIDisabled:        http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeMessageQueue:       "message queue error",
	ErrCodeStorageError:       "object storage error",

	ErrCodePolicyNotFound:     "policy not found",
	ErrCodePolicyNotOwned:     "policy not found or not accessible",
	ErrCodePolicyExpired:      "cannot compare expired policies",
	ErrCodePolicyCountInvalid: "exactly 2 policies must be provided for comparison",
	ErrCodePolicyDuplicateID:  "a policy cannot be compared with itself",
	ErrCodePolicyTextMissing:  "extracted policy text is unavailable",

	ErrCodeComparisonNotFound:     "policy comparison not found",
	ErrCodeComparisonInputInvalid: "invalid comparison input",
	ErrCodeComparisonFailed:       "comparison failed",
	ErrCodeInsightsRegenFailed:    "failed to generate AI insights",

	ErrCodeAIUnavailable:     "AI service unavailable",
	ErrCodeAIRequestFailed:   "AI service request failed",
	ErrCodeAITimeout:         "AI service timed out",
	ErrCodeAIAnswerMalformed: "AI service returned a malformed answer",
	ErrCodeAIDisabled:        "AI augmentation disabled",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
