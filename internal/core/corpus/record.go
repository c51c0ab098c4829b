package corpus

import (
	"strings"
)

// 語料欄位名稱
const (
	ColSerialID         = "RCP_SNO"
	ColTitle            = "RCP_TTL"
	ColDishName         = "CKG_NM"
	ColRegistrantID     = "RGTR_ID"
	ColRegistrantName   = "RGTR_NM"
	ColViews            = "INQ_CNT"
	ColRecommends       = "RCMM_CNT"
	ColScraps           = "SRAP_CNT"
	ColMethod           = "CKG_MTH_ACTO_NM"
	ColSituation        = "CKG_STA_ACTO_NM"
	ColMaterialCategory = "CKG_MTRL_ACTO_NM"
	ColKind             = "CKG_KND_ACTO_NM"
	ColDescription      = "CKG_IPDC"
	ColIngredients      = "CKG_MTRL_CN"
	ColServings         = "CKG_INBUN_NM"
	ColDifficulty       = "CKG_DODF_NM"
	ColTime             = "CKG_TIME_NM"
	ColRegisteredAt     = "FIRST_REG_DT"
	ColImageURL         = "RCP_IMG_URL"
)

// Record 語料中的一筆食譜（解析後不可變）
type Record struct {
	SerialID         string `json:"RCP_SNO"`
	Title            string `json:"RCP_TTL"`
	DishName         string `json:"CKG_NM"`
	RegistrantID     string `json:"RGTR_ID"`
	RegistrantName   string `json:"RGTR_NM"`
	Views            int    `json:"INQ_CNT"`
	Recommends       int    `json:"RCMM_CNT"`
	Scraps           int    `json:"SRAP_CNT"`
	Method           string `json:"CKG_MTH_ACTO_NM"`
	Situation        string `json:"CKG_STA_ACTO_NM"`
	MaterialCategory string `json:"CKG_MTRL_ACTO_NM"`
	Kind             string `json:"CKG_KND_ACTO_NM"`
	Description      string `json:"CKG_IPDC"`
	Ingredients      string `json:"CKG_MTRL_CN"`
	Servings         string `json:"CKG_INBUN_NM"`
	DifficultyText   string `json:"CKG_DODF_NM"`
	TimeText         string `json:"CKG_TIME_NM"`
	RegisteredAt     string `json:"FIRST_REG_DT"`
	ImageURL         string `json:"RCP_IMG_URL,omitempty"`
}

// Valid 必要欄位：序號、標題、菜名
func (r Record) Valid() bool {
	return r.SerialID != "" && r.Title != "" && r.DishName != ""
}

// Popularity 排序用的熱門度
func (r Record) Popularity() float64 {
	return float64(r.Views)*0.7 + float64(r.Scraps)*0.3
}

// SearchText 回傳用於關鍵字比對的欄位
func (r Record) SearchText() []string {
	return []string{r.Title, r.DishName, r.Description, r.Situation, r.MaterialCategory, r.Ingredients}
}

// columnIndex 欄位名稱到位置的對照
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

func (c columnIndex) get(fields []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// newRecord 由欄位建立 Record，計數欄位失敗時為 0
func newRecord(cols columnIndex, fields []string) Record {
	return Record{
		SerialID:         cols.get(fields, ColSerialID),
		Title:            cols.get(fields, ColTitle),
		DishName:         cols.get(fields, ColDishName),
		RegistrantID:     cols.get(fields, ColRegistrantID),
		RegistrantName:   cols.get(fields, ColRegistrantName),
		Views:            parseCount(cols.get(fields, ColViews)),
		Recommends:       parseCount(cols.get(fields, ColRecommends)),
		Scraps:           parseCount(cols.get(fields, ColScraps)),
		Method:           cols.get(fields, ColMethod),
		Situation:        cols.get(fields, ColSituation),
		MaterialCategory: cols.get(fields, ColMaterialCategory),
		Kind:             cols.get(fields, ColKind),
		Description:      cols.get(fields, ColDescription),
		Ingredients:      cols.get(fields, ColIngredients),
		Servings:         cols.get(fields, ColServings),
		DifficultyText:   cols.get(fields, ColDifficulty),
		TimeText:         cols.get(fields, ColTime),
		RegisteredAt:     cols.get(fields, ColRegisteredAt),
		ImageURL:         cols.get(fields, ColImageURL),
	}
}

// parseCount 解析開頭的數字，無法解析或溢位時回傳 0
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, ch := range s {
		if ch == ',' {
			continue
		}
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		if n > 1<<31 {
			return 0
		}
	}
	return n
}
