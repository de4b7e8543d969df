package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// センチネルエラー。サービス層はerrors.Isで分岐する。
var (
	// ErrDuplicateEmail はemailの一意制約違反を表す。
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateNationalID はnational_idの一意制約違反を表す。
	ErrDuplicateNationalID = errors.New("national id already registered")
	// ErrAccountNotFound は存在しないアカウントへの外部キー違反を表す。
	// ハンドラー層のガードを通過していれば発生しない、プログラミング上の不変条件違反。
	ErrAccountNotFound = errors.New("account does not exist")
)

// PostgreSQLのSQLSTATEコード。
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapAccountError はアカウントINSERT時のpqエラーをセンチネルエラーへ変換する。
// 一意制約違反は違反した制約名でemail/national_idを判別する。
func mapAccountError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if string(pqErr.Code) != pqUniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return ErrDuplicateEmail
	case strings.Contains(pqErr.Constraint, "national_id"):
		return ErrDuplicateNationalID
	}
	return err
}

// mapForeignKeyError は外部キー違反をErrAccountNotFoundへ変換する。
func mapForeignKeyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
		return ErrAccountNotFound
	}
	return err
}
