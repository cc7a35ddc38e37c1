package models

// Уровни владения английским по шкале CEFR
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelC2 = "C2"
)

// UserLevel представляет выбранный пользователем уровень
type UserLevel struct {
	UserID int64  `json:"user_id" db:"user_id"` // Telegram ID пользователя
	Level  string `json:"level" db:"level"`     // A1, A2, B1, B2, C1, C2
}

// AllLevels возвращает все уровни в порядке возрастания сложности
func AllLevels() []string {
	return []string{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

// IsValidLevel проверяет валидность уровня
func IsValidLevel(level string) bool {
	switch level {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}
