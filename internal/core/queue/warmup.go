package queue

import (
	"context"

	"meal-planner/internal/pkg/common"
)

// RecipeSource 預熱時呼叫的食譜來源
type RecipeSource interface {
	GetRecipesByGoal(ctx context.Context, goal common.Goal, limit int) ([]common.Recipe, error)
}

// WarmupHandler 以目標查詢填入快取
func WarmupHandler(src RecipeSource) Handler {
	return func(ctx context.Context, job Job) (int, error) {
		recipes, err := src.GetRecipesByGoal(ctx, job.Goal, job.Limit)
		return len(recipes), err
	}
}
