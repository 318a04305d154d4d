package view

import (
	"errors"
	"net/http"

	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/session"
)

// errorMessage picks the text shown above the page for a failed intent.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		return "この操作は現在の画面では行えません"
	}
	var e *internal_errors.ErrorWithStatusCode
	if !errors.As(err, &e) {
		return "エラーが発生しました"
	}
	switch e.StatusCode {
	case http.StatusNotFound:
		return "見つかりませんでした"
	case http.StatusServiceUnavailable:
		return "保存に失敗しました。しばらくしてから再度お試しください"
	default:
		return e.Message
	}
}
