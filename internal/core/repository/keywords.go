package repository

import (
	"strings"

	"github.com/samber/lo"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/pkg/common"
)

// KeywordSet 目標對應的搜尋關鍵字
type KeywordSet map[common.Goal][]string

// DefaultGoalKeywords 主要管線使用的關鍵字
func DefaultGoalKeywords() KeywordSet {
	return KeywordSet{
		common.GoalWeightLoss: {
			"다이어트", "저칼로리", "살빼기", "체중감량", "샐러드", "야채", "채소", "저지방", "헬시", "칼로리", "무침", "삶기", "찌기", "국", "탕",
			"배추", "브로콜리", "양배추", "콩나물", "시금치", "무", "당근", "버섯", "양파", "대파", "쪽파", "깻잎", "상추", "쌈채소", "청경채",
			"부추", "미나리", "김", "미역", "파래", "김치", "콩", "두부", "연두부", "순두부", "된장", "간장", "참기름", "들기름", "올리브오일",
			"샐러드드레싱", "요거트", "과일", "사과", "바나나", "오렌지", "키위", "레몬", "토마토", "오이", "파프리카", "피망", "가지", "호박",
			"감자", "고구마", "옥수수", "완두콩", "병아리콩", "렌틸콩", "현미", "귀리", "보리", "퀴노아", "통곡물", "통밀빵", "현미밥", "잡곡밥",
			"닭가슴살", "생선", "연어", "참치", "고등어", "갈치", "멸치", "다시마", "조개", "새우", "문어", "오징어",
			"닭", "오리고기", "소고기", "돼지고기", "양고기", "계란", "달걀", "메추리알", "삶은계란", "찐계란", "계란찜", "스크램블",
			"요구르트", "치즈", "저지방치즈", "코티지치즈", "리코타치즈", "두유", "아몬드", "호두", "잣", "참깨", "들깨", "해바라기씨",
			"슬림", "라이트", "제로", "무가당", "무설탕", "무염", "저염", "저나트륨", "저콜레스테롤", "저트랜스지방", "무트랜스지방",
			"디톡스", "클린", "그린", "비건", "락토오보", "락토", "오보", "페스코", "플렉시테리언", "세미베지테리언",
		},
		common.GoalMuscleGain: {
			"단백질", "근육", "고단백", "닭가슴살", "소고기", "계란", "프로틴", "근력", "운동", "닭", "돼지", "새우", "연어", "참치", "두부",
			"굽기", "볶기", "구이", "튀기기", "찌기", "삶기", "고기", "육류", "생선", "해산물", "유제품", "치즈", "요거트", "우유",
			"단백질쉐이크", "프로틴파우더", "크레아틴", "글루타민", "BCAA", "아미노산", "벌크", "벌킹", "머슬", "스트렝스", "웨이트",
			"피트니스", "바디빌딩", "보디빌딩", "헬스", "짐", "PT", "크로스핏", "요가", "필라테스",
		},
		common.GoalMaintenance: {
			"건강", "균형", "일상", "집밥", "영양", "웰빙", "가정식", "보양", "만들기", "레시피", "요리", "밥", "국", "찌개", "전골", "탕",
			"볶음", "구이", "튀김", "무침", "비빔밥", "덮밥", "볶음밥", "김치찌개", "된장찌개", "순두부찌개", "부대찌개", "돼지고기", "소고기",
			"닭고기", "생선", "채소", "과일", "쌀", "밀가루", "빵", "파스타", "국수", "면", "떡", "죽", "스프", "수프", "샐러드", "샌드위치",
		},
	}
}

// DefaultFallbackKeywords 備援搜尋使用的精簡關鍵字
func DefaultFallbackKeywords() KeywordSet {
	return KeywordSet{
		common.GoalWeightLoss:  {"다이어트", "저칼로리", "살빼기"},
		common.GoalMuscleGain:  {"단백질", "근육", "고단백"},
		common.GoalMaintenance: {"건강", "균형", "일상"},
	}
}

// matchesAny 任一搜尋欄位包含任一關鍵字
func matchesAny(rec corpus.Record, keywords []string) bool {
	return lo.SomeBy(rec.SearchText(), func(field string) bool {
		return field != "" && common.ContainsAny(field, keywords)
	})
}

// matchesLoose 備援搜尋只看名稱、標題與介紹，不分大小寫
func matchesLoose(rec corpus.Record, keywords []string) bool {
	content := strings.ToLower(rec.DishName + " " + rec.Title + " " + rec.Description)
	return lo.SomeBy(keywords, func(k string) bool {
		return strings.Contains(content, strings.ToLower(k))
	})
}
