// Package handler はHTTP APIのハンドラー層を提供する。
//
// 全てのレスポンスは統一エンベロープ {"status", "data", "message"} 形式で返す。
// サービス層のエラーからHTTPレスポンスへの変換はhandleServiceErrorの1箇所で行う。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/planman/internal/model"
)

// writeSuccessResponse は成功エンベロープを書き込む。
func writeSuccessResponse(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.NewSuccessEnvelope(status, data, message))
}

// writeErrorResponse は失敗エンベロープを書き込む。
func writeErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(model.NewFailEnvelope(apiErr.Status, apiErr.Message))
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細を漏らさず内部エラーとして扱う。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeErrorResponse(w, apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeErrorResponse(w, &model.APIError{
		Code:    model.ErrCodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "内部エラーが発生しました。",
	})
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// デコードに失敗した場合は検証エラーを書き込み、falseを返す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, model.NewValidationError("リクエストボディの形式が正しくありません。"))
		return false
	}
	return true
}
