package model

// Envelope は全APIレスポンス共通のボディ形式を表す。
// 成功・失敗を問わずこの形で返し、失敗時はdataがnullになる。
type Envelope struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// NewSuccessEnvelope は成功レスポンスのエンベロープを生成する。
func NewSuccessEnvelope(status int, data interface{}, message string) Envelope {
	return Envelope{Status: status, Data: data, Message: message}
}

// NewFailEnvelope はデータなしの失敗レスポンスのエンベロープを生成する。
func NewFailEnvelope(status int, message string) Envelope {
	return Envelope{Status: status, Data: nil, Message: message}
}
