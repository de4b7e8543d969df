package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fittrack/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

const accountColumns = `id, first_name, last_name, national_id, email, password_hash,
	age, gender, subscription, role, created_at`

// Create はアカウントを作成し、採番されたIDとcreated_atを書き戻す。
// 一意制約違反はErrDuplicateEmail / ErrDuplicateNationalIDへ変換する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (first_name, last_name, national_id, email, password_hash,
		                       age, gender, subscription, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		account.FirstName, account.LastName, account.NationalID, account.Email,
		account.PasswordHash, account.Age, account.Gender, account.Subscription,
		string(account.Role),
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		if mapped := mapAccountError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// FindByNationalID は国民IDでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByNationalID(ctx context.Context, nationalID string) (*model.Account, error) {
	return r.findOne(ctx, `WHERE national_id = $1`, nationalID)
}

// List は全アカウントを登録順（ID昇順）で返す。
func (r *PostgresAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// findOne はWHERE句を指定して単一アカウントを取得する。
func (r *PostgresAccountRepo) findOne(ctx context.Context, where string, arg any) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts `+where, arg,
	)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount はaccountColumnsの並びで1行をAccountへ読み込む。
func scanAccount(row rowScanner) (*model.Account, error) {
	account := &model.Account{}
	var role string
	err := row.Scan(
		&account.ID, &account.FirstName, &account.LastName, &account.NationalID,
		&account.Email, &account.PasswordHash, &account.Age, &account.Gender,
		&account.Subscription, &role, &account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Role = model.Role(role)
	return account, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
