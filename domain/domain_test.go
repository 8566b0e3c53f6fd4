package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDomainErrorUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("accept: %w", ErrAgreementFinalized)

	assert.True(t, IsDomainError(wrapped, ErrCodeConflict))
	assert.False(t, IsDomainError(wrapped, ErrCodeNotFound))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeConflict))
	assert.False(t, IsDomainError(nil, ErrCodeConflict))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("signature mismatch")
	err := WrapError(ErrCodeUnauthorized, "invalid token", cause)

	assert.Equal(t, "invalid token: signature mismatch", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsDomainError(err, ErrCodeUnauthorized))

	var nilErr *Error
	assert.Empty(t, nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleMember, RoleAdmin} {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.com", NormalizeEmail("  Ann@X.com "))
}

func TestAgreementStatusTransitions(t *testing.T) {
	assert.False(t, AgreementPending.Terminal())
	assert.True(t, AgreementAccepted.Terminal())
	assert.True(t, AgreementRejected.Terminal())

	var missing *Agreement
	assert.False(t, missing.IsPending())
	assert.False(t, missing.IsActive())
	assert.True(t, (&Agreement{Status: AgreementAccepted}).IsActive())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(fmt.Errorf("load: %w", ErrUserNotFound)))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("connection reset")))
	assert.Equal(t, ErrCodeInternal, CodeOf(nil))
	assert.Equal(t, ErrCodeInternal, CodeOf(&Error{Message: "uncoded"}))
}
