package recipe

import (
	"math"

	"meal-planner/internal/pkg/common"
)

// QualityScore 以瀏覽數與收藏率計算品質分數
// 瀏覽分數佔 70%，收藏率分數佔 30%，各自上限 5.0
func QualityScore(views, scraps int) common.UserRatings {
	viewScore := math.Min(float64(views)/200*5, 5)

	engagement := 0.0
	if views > 0 {
		rate := float64(scraps) / float64(views) * 100
		engagement = math.Min(rate*50, 5)
	}

	overall := viewScore*0.7 + engagement*0.3

	return common.UserRatings{
		Overall:     common.Round1(overall),
		Taste:       math.Min(overall+0.2, 5),
		Difficulty:  math.Min(overall+0.1, 5),
		Nutrition:   common.NonNegative(math.Min(overall-0.1, 5)),
		ReviewCount: views,
	}
}
