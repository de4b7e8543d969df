package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fittrack/internal/model"
)

// PostgresSavedExerciseRepo はPostgreSQLを使用した保存エクササイズリポジトリ。
type PostgresSavedExerciseRepo struct {
	db *sql.DB
}

// NewPostgresSavedExerciseRepo はPostgresSavedExerciseRepoを生成する。
func NewPostgresSavedExerciseRepo(db *sql.DB) *PostgresSavedExerciseRepo {
	return &PostgresSavedExerciseRepo{db: db}
}

// Create は保存エクササイズを作成し、採番されたIDとcreated_atを書き戻す。
// 外部キー違反はErrAccountNotFoundへ変換する。
func (r *PostgresSavedExerciseRepo) Create(ctx context.Context, exercise *model.SavedExercise) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO saved_exercises (account_id, exercise_id, name, target, equipment, gif_url)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, created_at`,
		exercise.AccountID, exercise.ExerciseID, exercise.Name, exercise.Target,
		exercise.Equipment, exercise.GifURL,
	).Scan(&exercise.ID, &exercise.CreatedAt)

	if err != nil {
		if mapped := mapForeignKeyError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert saved exercise: %w", err)
	}

	return nil
}

// ListByAccountID は指定アカウントが保存した全エクササイズを返す。
func (r *PostgresSavedExerciseRepo) ListByAccountID(ctx context.Context, accountID int64) ([]*model.SavedExercise, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, exercise_id, name, target,
		        COALESCE(equipment, ''), COALESCE(gif_url, ''), created_at
		 FROM saved_exercises
		 WHERE account_id = $1
		 ORDER BY id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*model.SavedExercise
	for rows.Next() {
		exercise := &model.SavedExercise{}
		err := rows.Scan(
			&exercise.ID, &exercise.AccountID, &exercise.ExerciseID, &exercise.Name,
			&exercise.Target, &exercise.Equipment, &exercise.GifURL, &exercise.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved exercises: %w", err)
	}

	return exercises, nil
}

// DeleteOwned は行IDと所有アカウントIDの両方が一致する場合のみ削除する。
// 一致する行がない場合は何もしない。所有権チェックをWHERE句に含めることで、
// 他アカウントの行を消せないことをSQLレベルで保証する。
func (r *PostgresSavedExerciseRepo) DeleteOwned(ctx context.Context, id, accountID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_exercises WHERE id = $1 AND account_id = $2`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved exercise: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SavedExerciseRepository = (*PostgresSavedExerciseRepo)(nil)
