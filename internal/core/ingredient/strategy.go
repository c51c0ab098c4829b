package ingredient

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"meal-planner/internal/pkg/common"
)

// DefaultUnit 只有名稱時使用的單位
const DefaultUnit = "개"

// Strategy 單一食材項目的解析策略
type Strategy interface {
	Name() string
	TryParse(item string) (common.ParsedIngredient, bool)
}

const number = `(\d+(?:/\d+)?(?:\.\d+)?)`

// patternStrategy 以正則表達式解析 名稱/數量/單位
type patternStrategy struct {
	name string
	re   *regexp.Regexp
}

// NewPatternStrategy 創建正則策略，表達式需有三個群組：名稱、數量、單位
func NewPatternStrategy(name, pattern string) Strategy {
	return &patternStrategy{name: name, re: regexp.MustCompile(pattern)}
}

func (s *patternStrategy) Name() string {
	return s.name
}

func (s *patternStrategy) TryParse(item string) (common.ParsedIngredient, bool) {
	m := s.re.FindStringSubmatch(item)
	if len(m) != 4 {
		return common.ParsedIngredient{}, false
	}

	name := strings.TrimSpace(m[1])
	qty, ok := ParseQuantity(m[2])
	if !ok || name == "" {
		return common.ParsedIngredient{}, false
	}

	return common.ParsedIngredient{
		Name:     name,
		Quantity: qty,
		Unit:     strings.TrimSpace(m[3]),
	}, true
}

// nameOnly 整個項目作為名稱，數量 1
type nameOnly struct{}

func (nameOnly) Name() string {
	return "name-only"
}

func (nameOnly) TryParse(item string) (common.ParsedIngredient, bool) {
	name := strings.TrimSpace(item)
	if utf8.RuneCountInString(name) < 2 || isPlaceholder(name) {
		return common.ParsedIngredient{}, false
	}
	return common.ParsedIngredient{Name: name, Quantity: 1, Unit: DefaultUnit}, true
}

// DefaultStrategies 依優先順序排列的預設策略
func DefaultStrategies() []Strategy {
	return []Strategy{
		// 계란2개、돼지고기수육용삼겹살500g
		NewPatternStrategy("tight-hangul-unit", `^(.*[가-힣])`+number+`([가-힣]+)$`),
		NewPatternStrategy("tight-latin-unit", `^(.*[가-힣])`+number+`([a-zA-Z]+)$`),
		// 돼지고기 수육용 300그램
		NewPatternStrategy("spaced-hangul-unit", `^(.+?)\s+`+number+`\s*([가-힣]+)$`),
		NewPatternStrategy("spaced-latin-unit", `^(.+?)\s+`+number+`\s*([a-zA-Z]+)$`),
		// 된장1.5 큰술
		NewPatternStrategy("decimal-hangul-unit", `^(.+?)(\d+(?:\.\d+)?)\s*([가-힣]+)$`),
		// 대파1/3 대
		NewPatternStrategy("fraction-hangul-unit", `^(.+?)(\d+/\d+)\s*([가-힣]+)$`),
		// 참기름 1 T
		NewPatternStrategy("spoon-letter", `^(.+?)\s*`+number+`\s*([TtLl])$`),
		nameOnly{},
	}
}

// ParseQuantity 解析整數、小數或分數，非正數視為失敗
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var qty float64
	if num, den, found := strings.Cut(s, "/"); found {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		qty = n / d
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		qty = v
	}

	if qty <= 0 {
		return 0, false
	}
	return qty, true
}

var placeholders = []string{"약간", "적당히", "적당량"}

func isPlaceholder(item string) bool {
	return common.ContainsAny(item, placeholders)
}
