package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeMetricNotFound, "metric %s not found", "win_rate_x")
	suite.Equal(ErrCodeMetricNotFound, err.Code)
	suite.Equal("metric win_rate_x not found", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeCacheUnavailable, "cache unavailable", cause)
	suite.Equal(ErrCodeCacheUnavailable, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Equal("[500] cache unavailable: connection refused", err.Error())
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("disk full")
	err := Wrapf(ErrCodeReportWriteFailed, cause, "failed to write %s", "out.parquet")
	suite.Equal("failed to write out.parquet", err.Message)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidParameter, GetCode(New(ErrCodeInvalidParameter, "x")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))

	// outermost code wins
	inner := New(ErrCodeQueryFailed, "query failed")
	suite.Equal(ErrCodeCacheUnavailable, GetCode(Wrap(ErrCodeCacheUnavailable, "cache", inner)))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := fmt.Errorf("outer: %w", New(ErrCodeInvalidParameter, "invalid parameter"))
	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestLedgerSchemaError() {
	err := NewLedgerSchemaErrorf(ErrCodeInvalidTimestamp, 3, "time", "cannot parse %q", "yesterday")
	suite.Equal(3, err.Row)
	suite.Equal("time", err.Column)
	suite.Equal(`ledger schema error [302] at row 3: cannot parse "yesterday"`, err.Error())
	suite.True(IsLedgerSchemaError(err))
	suite.True(IsLedgerSchemaError(fmt.Errorf("normalize: %w", err)))
	suite.Equal(ErrCodeInvalidTimestamp, GetCode(err))
	suite.False(IsLedgerSchemaError(New(ErrCodeInvalidParameter, "x")))
	suite.False(IsLedgerSchemaError(nil))
}

func (suite *ErrorTestSuite) TestLedgerSchemaErrorWithoutRow() {
	err := NewLedgerSchemaError(ErrCodeMissingColumn, NoRow, "profit", "missing required column profit")
	suite.Equal("ledger schema error [301]: missing required column profit", err.Error())
}

func (suite *ErrorTestSuite) TestMissingSeedError() {
	err := NewMissingSeedError("ACC-1")
	suite.Equal(`account "ACC-1" has no initial balance entry`, err.Error())
	suite.True(IsMissingSeedError(err))
	suite.True(HasCode(err, ErrCodeMissingSeed))
	suite.False(IsMissingSeedError(errors.New("other")))
}

func (suite *ErrorTestSuite) TestIsCacheUnavailable() {
	suite.True(IsCacheUnavailable(Wrap(ErrCodeCacheUnavailable, "cache", errors.New("x"))))
	suite.False(IsCacheUnavailable(New(ErrCodeCacheWriteFailed, "write")))
	suite.False(IsCacheUnavailable(nil))
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeLedgerSchema)
	suite.Equal(ErrorCode(400), ErrCodeMetricNotFound)
	suite.Equal(ErrorCode(500), ErrCodeCacheUnavailable)
	suite.Equal(ErrorCode(600), ErrCodeReportWriteFailed)
}
