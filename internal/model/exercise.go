package model

import "time"

// SavedExercise は会員が検索結果から保存したエクササイズを表す。
// ExerciseIDは外部検索APIが払い出す不透明な識別子で、
// (account, exercise_id) の重複保存は許容される。
type SavedExercise struct {
	ID         int64
	AccountID  int64
	ExerciseID string
	Name       string
	Target     string
	Equipment  string
	GifURL     string
	CreatedAt  time.Time
}

// ExerciseResult は外部検索APIから取得したエクササイズ1件を表す。
type ExerciseResult struct {
	ExerciseID string `json:"id"`
	Name       string `json:"name"`
	Target     string `json:"target"`
	Equipment  string `json:"equipment"`
	GifURL     string `json:"gifUrl"`
}

// Class はジムで開講されるエクササイズクラスを表す。
type Class struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Level       string `json:"level"`
}
