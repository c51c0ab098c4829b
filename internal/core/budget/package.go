package budget

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// 包裝單位
const (
	UnitGram  = "g"
	UnitML    = "ml"
	UnitCount = "개"
)

// DefaultPackageGrams 無法辨識包裝時的預設量
const DefaultPackageGrams = 100

// Package 包裝規格換算結果
type Package struct {
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	Recognized bool    `json:"recognized"`
}

var (
	gramPackRe = regexp.MustCompile(`(\d+)g\s*[x×]\s*(\d+)`)
	mlPackRe   = regexp.MustCompile(`(\d+)ml\s*[x×]\s*(\d+)`)
	kgRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)kg`)
	literRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)[Ll]`)
	mlRe       = regexp.MustCompile(`(\d+)ml`)
	gramRe     = regexp.MustCompile(`(\d+)g(\s*[x×])?`)
	countRe    = regexp.MustCompile(`(\d+)\s*(?:개|구|입)(?:\s*[x×]\s*(\d+))?`)
)

// ParsePackage 解析商品的包裝描述，例如 "100g x 30팩"、"1.2kg"、"중과 12개입"
func ParsePackage(desc string) Package {
	desc = strings.TrimSpace(desc)

	if m := gramPackRe.FindStringSubmatch(desc); m != nil {
		return Package{Amount: atof(m[1]) * atof(m[2]), Unit: UnitGram, Recognized: true}
	}
	if m := mlPackRe.FindStringSubmatch(desc); m != nil {
		return Package{Amount: atof(m[1]) * atof(m[2]), Unit: UnitML, Recognized: true}
	}
	if m := kgRe.FindStringSubmatch(desc); m != nil {
		return Package{Amount: atof(m[1]) * 1000, Unit: UnitGram, Recognized: true}
	}
	if m := mlRe.FindStringSubmatch(desc); m != nil {
		return Package{Amount: atof(m[1]), Unit: UnitML, Recognized: true}
	}
	if m := literRe.FindStringSubmatch(desc); m != nil {
		return Package{Amount: atof(m[1]) * 1000, Unit: UnitML, Recognized: true}
	}
	// 後面接著 x 的重量已由第一個規則處理
	for _, m := range gramRe.FindAllStringSubmatch(desc, -1) {
		if m[2] == "" {
			return Package{Amount: atof(m[1]), Unit: UnitGram, Recognized: true}
		}
	}
	if m := countRe.FindStringSubmatch(desc); m != nil {
		n := atof(m[1])
		if m[2] != "" {
			n *= atof(m[2])
		}
		return Package{Amount: n, Unit: UnitCount, Recognized: true}
	}

	return Package{Amount: DefaultPackageGrams, Unit: UnitGram}
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// 湯匙與杯的克數
var spoonGrams = map[string]float64{
	"큰술":  15,
	"T":   15,
	"작은술": 5,
	"t":   5,
	"컵":   200,
}

// RecipesPerPackage 一個包裝可做幾次食譜，至少 1
func RecipesPerPackage(pkg Package, qty float64, unit string) int {
	if qty <= 0 {
		return 1
	}

	switch unit {
	case "kg":
		qty, unit = qty*1000, UnitGram
	case "L", "l":
		qty, unit = qty*1000, UnitML
	}

	var n float64
	grams, spoon := spoonGrams[unit]
	switch {
	case (unit == UnitGram || unit == UnitML) && (pkg.Unit == UnitGram || pkg.Unit == UnitML):
		n = pkg.Amount / qty
	case unit == UnitCount && pkg.Unit == UnitCount:
		n = pkg.Amount / qty
	case spoon && (pkg.Unit == UnitGram || pkg.Unit == UnitML):
		n = pkg.Amount / (qty * grams)
	default:
		// 無法換算時保守估計
		n = pkg.Amount / (qty * 10)
	}

	count := int(math.Floor(n))
	if count <= 0 {
		return 1
	}
	return count
}
