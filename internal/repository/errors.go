package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 永続化層の番兵エラー。サービス層でAPIエラーに変換される。
var (
	// ErrNotFound は対象の行が存在しない（または所有者が異なる）ことを表す。
	ErrNotFound = errors.New("repository: row not found")

	// ErrDuplicate は一意制約違反を表す。
	ErrDuplicate = errors.New("repository: duplicate row")
)

// PostgreSQLのエラーコード。
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// isUniqueViolation はerrがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// isForeignKeyViolation はerrがPostgreSQLの外部キー制約違反かどうかを判定する。
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolationCode
}
