package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/planman/internal/model"
)

// WriteErrorResponse は統一エンベロープ形式でエラーレスポンスを書き込む。
// ミドルウェアでリクエストを拒否する場合に使う。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(model.NewFailEnvelope(apiErr.Status, apiErr.Message))
}
