package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"petshop/internal/gateway"
)

// エラー分類コード。Handlerがそのままレスポンスに載せる。
type ErrorCode string

const (
	CodeInsufficientStock     ErrorCode = "INSUFFICIENT_STOCK"
	CodeInvalidQuantity       ErrorCode = "INVALID_QUANTITY"
	CodeEmptyCart             ErrorCode = "EMPTY_CART"
	CodeCheckoutFailed        ErrorCode = "CHECKOUT_FAILED"
	CodeIllegalTransition     ErrorCode = "ILLEGAL_TRANSITION"
	CodeNegativeStockResult   ErrorCode = "NEGATIVE_STOCK_RESULT"
	CodeSelfDemotionForbidden ErrorCode = "SELF_DEMOTION_FORBIDDEN"
	CodeUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	CodeNetworkFailure        ErrorCode = "NETWORK_FAILURE"
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeInvalidInput          ErrorCode = "INVALID_INPUT"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodeInternal              ErrorCode = "INTERNAL"
)

type DomainError struct {
	Code    ErrorCode
	Status  int
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code ErrorCode, status int, message string) error {
	return &DomainError{Code: code, Status: status, Message: message}
}

// 原因付き。原因は握りつぶさずログと診断に残す。
func WrapDomainError(code ErrorCode, status int, message string, cause error) error {
	return &DomainError{Code: code, Status: status, Message: message, Cause: cause}
}

func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

// コラボレータ境界の失敗を分類へ写す。
// 401はUNAUTHENTICATED、404はNOT_FOUND、それ以外はNETWORK_FAILURE（原因付き）。
// 409は文脈で意味が変わるので呼び出し側がerrors.Isで先に拾う。
func fromGatewayError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		return WrapDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthenticated", err)
	case errors.Is(err, gateway.ErrNotFound):
		return WrapDomainError(CodeNotFound, http.StatusNotFound, "not found", err)
	default:
		return WrapDomainError(CodeNetworkFailure, http.StatusBadGateway, "upstream request failed", err)
	}
}
