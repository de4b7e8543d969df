// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層のエラーをHTTPレスポンスへ変換する。
// APIErrorはコードに応じたステータスで返し、それ以外（想定外の永続化エラー等）は
// 詳細をログにのみ記録して500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, statusCodeFor(apiErr), apiErr)
		return
	}

	slog.Error("unexpected service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// maxBodySize はリクエストボディの読み取り上限（バイト）。
const maxBodySize = 1 << 20

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 失敗時は400を書き込み、非nilのエラーを返す（呼び出し側はそのままreturnする）。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("malformed JSON body"))
		return err
	}
	return nil
}

// statusCodeFor はAPIErrorのコードをHTTPステータスコードへ対応付ける。
func statusCodeFor(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateEmail, model.ErrCodeDuplicateNationalID:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeAccountNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
