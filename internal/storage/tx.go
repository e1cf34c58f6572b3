package storage

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок Postgres, означающие конфликт конкурентного доступа:
// 40001 — serialization_failure, 40P01 — deadlock_detected,
// 55P03 — lock_not_available.
var txConflictCodes = map[pq.ErrorCode]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// IsTxConflict сообщает, что транзакция не прошла из-за конкурентного
// конфликта и вызывающая сторона может повторить запрос.
func IsTxConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := txConflictCodes[pqErr.Code]
		return ok
	}
	return false
}
