package repository

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/pkg/common"
)

// 批次設定
const (
	DefaultBatchSize = 10
	yieldEveryBatch  = 3
)

// TransformFunc 單筆轉換
type TransformFunc func(corpus.Record) common.Recipe

// BatchStats 批次轉換結果
type BatchStats struct {
	Batches int `json:"batches"`
	OK      int `json:"ok"`
	Failed  int `json:"failed"`
}

// transformBatches 分批並行轉換，單筆失敗不影響同批其他項目
// 回傳的順序與輸入相同，失敗的項目會被略過
func transformBatches(ctx context.Context, stage string, records []corpus.Record, size int, fn TransformFunc) ([]common.Recipe, BatchStats, error) {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var stats BatchStats
	out := make([]common.Recipe, 0, len(records))

	for start := 0; start < len(records); start += size {
		if err := ctx.Err(); err != nil {
			return out, stats, err
		}

		end := min(start+size, len(records))
		batch := records[start:end]
		results := make([]common.Recipe, len(batch))
		failures := make([]error, len(batch))

		var g errgroup.Group
		for i, rec := range batch {
			g.Go(func() error {
				results[i], failures[i] = safeTransform(fn, rec)
				return nil
			})
		}
		_ = g.Wait()

		ok, failed := 0, 0
		for i := range batch {
			if failures[i] != nil {
				failed++
				common.LogDebug("食譜轉換失敗",
					zap.String("serial_id", batch[i].SerialID),
					zap.Error(failures[i]),
				)
				continue
			}
			out = append(out, results[i])
			ok++
		}

		stats.Batches++
		stats.OK += ok
		stats.Failed += failed
		common.LogBatch(stage, stats.Batches, ok, failed)

		if stats.Batches%yieldEveryBatch == 0 {
			runtime.Gosched()
		}
	}

	return out, stats, nil
}

func safeTransform(fn TransformFunc, rec corpus.Record) (r common.Recipe, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("transform panic: %v", p)
		}
	}()
	return fn(rec), nil
}
