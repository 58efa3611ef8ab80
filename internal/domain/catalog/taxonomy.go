package catalog

// Category is the top-level product grouping shown in the storefront.
type Category string

const (
	CategoryPlants   Category = "plants"
	CategoryChina    Category = "china"
	CategoryPersonal Category = "personal"
)

// Categories lists all categories in display order.
var Categories = []Category{CategoryPlants, CategoryChina, CategoryPersonal}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryPlants, CategoryChina, CategoryPersonal:
		return true
	}
	return false
}

// Condition describes the wear of a product.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

// Conditions lists all conditions in display order.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair}

// IsValid reports whether c is a known condition
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair:
		return true
	}
	return false
}

var subcategories = map[Category][]string{
	CategoryPlants:   {"Комнатные", "Садовые", "Суккуленты", "Кактусы", "Семена", "Удобрения"},
	CategoryChina:    {"Электроника", "Одежда", "Аксессуары", "Для дома", "Гаджеты", "Инструменты"},
	CategoryPersonal: {"Одежда", "Обувь", "Техника", "Книги", "Мебель", "Прочее"},
}

// Subcategories returns the subcategories of a single category.
func Subcategories(c Category) []string {
	return append([]string(nil), subcategories[c]...)
}

// Taxonomy returns the full category to subcategory map.
func Taxonomy() map[Category][]string {
	out := make(map[Category][]string, len(subcategories))
	for c, subs := range subcategories {
		out[c] = append([]string(nil), subs...)
	}
	return out
}

// AvailableSubcategories returns the union of subcategories of the given categories,
// de-duplicated and in taxonomy order. Unknown categories contribute nothing.
func AvailableSubcategories(categories []Category) []string {
	selected := make(map[Category]bool, len(categories))
	for _, c := range categories {
		selected[c] = true
	}

	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, c := range Categories {
		if !selected[c] {
			continue
		}
		for _, sub := range subcategories[c] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			result = append(result, sub)
		}
	}
	return result
}
