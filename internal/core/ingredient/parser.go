package ingredient

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// 分段標記，例如 [재료]、[양념]、[만두전골 육수]
var sectionMarker = regexp.MustCompile(`\[[^\]]*\]`)

// Result 解析結果
type Result struct {
	Ingredients []common.ParsedIngredient `json:"ingredients"`
	Discarded   int                       `json:"discarded"`
	Dropped     int                       `json:"dropped"`
	Fallbacks   int                       `json:"fallbacks"`
	ByStrategy  map[string]int            `json:"by_strategy"`
}

// Parser 食材文字解析器
type Parser struct {
	strategies []Strategy
}

// NewParser 創建解析器，未指定策略時使用預設
func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Parser{strategies: strategies}
}

// Parse 解析整段食材文字，單一項目失敗不影響其他項目
func (p *Parser) Parse(blob string) Result {
	res := Result{
		Ingredients: []common.ParsedIngredient{},
		ByStrategy:  make(map[string]int),
	}
	if strings.TrimSpace(blob) == "" {
		return res
	}

	for _, section := range sectionMarker.Split(blob, -1) {
		items := lo.FilterMap(strings.Split(section, "|"), func(item string, _ int) (string, bool) {
			item = strings.TrimSpace(item)
			return item, item != ""
		})

		for _, item := range items {
			if item == "약간" || utf8.RuneCountInString(item) < 2 {
				res.Discarded++
				continue
			}

			ing, strategy, ok := p.ParseItem(item)
			if !ok {
				res.Dropped++
				common.LogDebug("食材項目無法解析", zap.String("item", item))
				continue
			}

			res.ByStrategy[strategy]++
			if strategy == "name-only" {
				res.Fallbacks++
			}
			res.Ingredients = append(res.Ingredients, ing)
		}
	}

	return res
}

// ParseItem 依序嘗試策略，第一個成功者勝出
func (p *Parser) ParseItem(item string) (common.ParsedIngredient, string, bool) {
	item = strings.TrimSpace(item)
	for _, s := range p.strategies {
		if ing, ok := s.TryParse(item); ok {
			return ing, s.Name(), true
		}
	}
	return common.ParsedIngredient{}, "", false
}

// Names 回傳去重後的食材名稱
func Names(ings []common.ParsedIngredient) []string {
	return lo.Uniq(lo.Map(ings, func(ing common.ParsedIngredient, _ int) string {
		return ing.Name
	}))
}
