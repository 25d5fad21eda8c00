// Package errors_test covers the AppError type, factory functions and
// error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"policy not found", errors.ErrCodePolicyNotFound, "policy 42 not found"},
		{"invalid param", errors.CodeInvalidParam, "policyIds must not be empty"},
		{"expired", errors.ErrCodePolicyExpired, "cannot compare expired policies"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodePolicyExpired, "cannot compare expired policies")
	assert.Equal(t, "[POLICY_003] cannot compare expired policies", ae.Error())

	withDetail := ae.WithDetail("Auto Plan, Home Plan")
	assert.Equal(t, "[POLICY_003] cannot compare expired policies: Auto Plan, Home Plan", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "failed to load policy")

	require.NotNil(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, errors.ErrCodeDatabaseError, wrapped.Code)
}

func TestWrap_UnknownCodeKeepsInnerCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeComparisonNotFound, "missing")
	outer := errors.Wrap(fmt.Errorf("ctx: %w", inner), errors.CodeUnknown, "lookup")

	assert.Equal(t, errors.ErrCodeComparisonNotFound, outer.Code)
}

func TestWithCause_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeAITimeout, "ai timed out")
	cause := stderrors.New("deadline exceeded")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Equal(t, cause, withCause.Cause)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(cause))
	assert.Nil(t, nilErr.WithDetail("x"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_FindsCodeThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePolicyNotOwned, "not accessible")
	outer := errors.Wrap(inner, errors.ErrCodeComparisonFailed, "compare")
	stdWrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, errors.IsCode(stdWrapped, errors.ErrCodeComparisonFailed))
	assert.True(t, errors.IsCode(stdWrapped, errors.ErrCodePolicyNotOwned))
	assert.False(t, errors.IsCode(stdWrapped, errors.ErrCodeAITimeout))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeAITimeout))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"generic", errors.NotFound("not found"), true},
		{"policy", errors.New(errors.ErrCodePolicyNotFound, "x"), true},
		{"policy not owned", errors.New(errors.ErrCodePolicyNotOwned, "x"), true},
		{"comparison", errors.New(errors.ErrCodeComparisonNotFound, "x"), true},
		{"wrapped", fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeComparisonNotFound, "x")), true},
		{"internal", errors.Internal("boom"), false},
		{"std error", stderrors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, errors.IsNotFound(tc.err))
		})
	}
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.InvalidParam("bad")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeValidation, "bad")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodePolicyExpired, "expired")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodePolicyCountInvalid, "count")))
	assert.False(t, errors.IsValidation(errors.New(errors.ErrCodePolicyNotFound, "nf")))
	assert.False(t, errors.IsValidation(errors.Internal("boom")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeAIUnavailable, errors.GetCode(errors.New(errors.ErrCodeAIUnavailable, "down")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Codes
// ─────────────────────────────────────────────────────────────────────────────

func TestErrorCodes_FormatAndCoverage(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range errors.ErrorCodeHTTPStatus {
		assert.Regexp(t, pattern, code.String())
		_, hasMessage := errors.ErrorCodeMessage[code]
		assert.True(t, hasMessage, "missing default message for %s", code)
	}
}

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrCodePolicyNotOwned, http.StatusNotFound},
		{errors.ErrCodePolicyExpired, http.StatusBadRequest},
		{errors.ErrCodeComparisonNotFound, http.StatusNotFound},
		{errors.ErrCodeValidation, http.StatusUnprocessableEntity},
		{errors.ErrCodeAITimeout, http.StatusGatewayTimeout},
		{errors.ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, errors.HTTPStatusForCode(tc.code), tc.code.String())
	}

	assert.True(t, errors.IsClientError(errors.ErrCodePolicyExpired))
	assert.True(t, errors.IsServerError(errors.ErrCodeDatabaseError))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode("NOPE_999"))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "POLICY", errors.ModuleForCode(errors.ErrCodePolicyExpired))
	assert.Equal(t, "COMPARISON", errors.ModuleForCode(errors.ErrCodeComparisonNotFound))
	assert.Equal(t, "AI", errors.ModuleForCode(errors.ErrCodeAITimeout))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(""))
}

//Personal.AI order the ending
