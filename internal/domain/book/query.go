package book

// 可排序字段(JSON字段名)
const (
	SortByTitle         = "title"
	SortByAuthor        = "author"
	SortByCategory      = "category"
	SortByPrice         = "price"
	SortByRating        = "rating"
	SortByPublishedDate = "publishedDate"
	SortByCreatedAt     = "createdAt"
	SortByUpdatedAt     = "updatedAt"

	DefaultSortBy = SortByCreatedAt
)

var sortable = map[string]struct{}{
	SortByTitle:         {},
	SortByAuthor:        {},
	SortByCategory:      {},
	SortByPrice:         {},
	SortByRating:        {},
	SortByPublishedDate: {},
	SortByCreatedAt:     {},
	SortByUpdatedAt:     {},
}

// IsSortable 是否允许按该字段排序
func IsSortable(field string) bool {
	_, ok := sortable[field]
	return ok
}

// Filter 列表过滤条件
// 非空条件之间是AND关系;Search匹配title OR author
// 所有文本匹配都是大小写不敏感的子串匹配,输入按字面量处理(不是正则/通配符)
type Filter struct {
	Author    string
	Category  string
	Search    string
	MinRating *float64 // rating >= MinRating
}

// Query 列表查询
type Query struct {
	Filter Filter
	SortBy string // 必须是IsSortable的字段
	Desc   bool
	Skip   int
	Limit  int
}
