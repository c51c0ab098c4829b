package recipe

import (
	"strings"

	"meal-planner/internal/pkg/common"
)

// 預設值
const (
	DefaultCookingTime = 30
	defaultMinutes     = 15
	defaultHours       = 1
)

// InferMealType 由標題、料理種類與情境推斷餐別
func InferMealType(title, kind, situation string) common.MealType {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "아침") || situation == "아침대용":
		return common.MealBreakfast
	case strings.Contains(t, "점심"):
		return common.MealLunch
	case strings.Contains(t, "저녁") || situation == "술안주":
		return common.MealDinner
	case kind == "양념/소스/잼" || situation == "간식":
		return common.MealSnack
	case kind == "국/탕":
		return common.MealDinner
	case kind == "밑반찬":
		return common.MealLunch
	default:
		return common.MealLunch
	}
}

// InferDifficulty 初級或任何人為簡單，中級為普通，其餘為困難，缺值為普通
func InferDifficulty(text string) common.Difficulty {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return common.DifficultyMedium
	case strings.Contains(text, "초급") || strings.Contains(text, "아무나"):
		return common.DifficultyEasy
	case strings.Contains(text, "중급"):
		return common.DifficultyMedium
	default:
		return common.DifficultyHard
	}
}

// InferCookingTime 解析烹飪時間（分鐘）
func InferCookingTime(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultCookingTime
	}

	if strings.Contains(text, "시간") {
		hours, ok := leadingInt(text)
		if !ok || hours == 0 {
			hours = defaultHours
		}
		return hours * 60
	}

	minutes, ok := leadingInt(text)
	if !ok || minutes == 0 {
		return defaultMinutes
	}
	return minutes
}

// leadingInt 解析開頭的整數
func leadingInt(s string) (int, bool) {
	n, digits := 0, 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		digits++
	}
	return n, digits > 0
}
