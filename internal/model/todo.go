package model

import "time"

// Category は予定のカテゴリを表す。
type Category string

const (
	CategoryStudy    Category = "STUDY"
	CategoryExercise Category = "EXERCISE"
	CategoryHobby    Category = "HOBBY"
	CategoryWork     Category = "WORK"
	CategoryEtc      Category = "ETC"
)

// IsValid はカテゴリが定義済みの値かどうかを返す。
func (c Category) IsValid() bool {
	switch c {
	case CategoryStudy, CategoryExercise, CategoryHobby, CategoryWork, CategoryEtc:
		return true
	}
	return false
}

// Todo は日付に紐づく予定（やること）を表す。
// ちょうど1人のユーザーに所有され、所有者の退会時に連鎖削除される。
type Todo struct {
	ID        int64
	UserID    string // 所有者のUser.UserID
	Date      time.Time
	Title     string
	Category  Category
	IsDone    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
