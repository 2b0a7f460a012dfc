package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. ID由存储层在创建时分配(MongoDB为ObjectID十六进制,关系库为UUID),创建后不可变
// 2. CreatedAt只设置一次,UpdatedAt每次修改都会刷新且严格递增
// 3. 校验规则通过validate tag声明,见validation.go
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Author        string    `json:"author" validate:"required"`
	Category      string    `json:"category" validate:"required"`
	Price         float64   `json:"price" validate:"gte=0"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
	PublishedDate time.Time `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Draft 创建图书的输入
// 数值与日期使用指针,用来区分"未提供"和"零值"(price=0是合法的)
type Draft struct {
	Title         string
	Author        string
	Category      string
	Price         *float64
	Rating        *float64
	PublishedDate *time.Time
}

// NewBook 创建新图书(工厂方法)
// 文本字段先去除首尾空白再校验,失败返回ValidationError
func NewBook(d Draft) (*Book, error) {
	missing := make([]string, 0, 3)
	if d.Price == nil {
		missing = append(missing, "price")
	}
	if d.Rating == nil {
		missing = append(missing, "rating")
	}
	if d.PublishedDate == nil || d.PublishedDate.IsZero() {
		missing = append(missing, "publishedDate")
	}

	b := &Book{
		Title:    strings.TrimSpace(d.Title),
		Author:   strings.TrimSpace(d.Author),
		Category: strings.TrimSpace(d.Category),
	}
	if d.Price != nil {
		b.Price = *d.Price
	}
	if d.Rating != nil {
		b.Rating = *d.Rating
	}
	if d.PublishedDate != nil {
		b.PublishedDate = storedDate(*d.PublishedDate)
	}

	if err := validateBook(b, missing); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验完整记录(创建和合并更新后都要调用)
func (b *Book) Validate() error {
	var missing []string
	if b.PublishedDate.IsZero() {
		missing = append(missing, "publishedDate")
	}
	return validateBook(b, missing)
}

// Touch 刷新UpdatedAt
// 存储精度为毫秒,同一毫秒内的连续修改也要保证严格递增
func (b *Book) Touch(now time.Time) {
	b.UpdatedAt = NextUpdatedAt(b.UpdatedAt, now)
}

// NextUpdatedAt 计算新的修改时间:截断到毫秒,且严格大于prev
func NextUpdatedAt(prev, now time.Time) time.Time {
	next := now.UTC().Truncate(time.Millisecond)
	if !next.After(prev) {
		next = prev.Add(time.Millisecond)
	}
	return next
}

// Patch 部分更新
// 只修改非nil字段;id、createdAt不可修改
type Patch struct {
	Title         *string
	Author        *string
	Category      *string
	Price         *float64
	Rating        *float64
	PublishedDate *time.Time
}

// storedDate 统一为UTC并截断到毫秒(MongoDB日期精度)
// 保证写入返回值与之后读出的值一致
func storedDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Normalize 去除文本字段首尾空白,出版日期按存储精度截断
func (p Patch) Normalize() Patch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Title = trim(p.Title)
	p.Author = trim(p.Author)
	p.Category = trim(p.Category)
	if p.PublishedDate != nil {
		d := storedDate(*p.PublishedDate)
		p.PublishedDate = &d
	}
	return p
}

// IsEmpty 是否没有任何字段
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Category == nil &&
		p.Price == nil && p.Rating == nil && p.PublishedDate == nil
}

// ApplyTo 把补丁合并到已有记录上(不刷新UpdatedAt)
func (p Patch) ApplyTo(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
}

// Validate 只校验补丁中提供的字段
// 所有约束都是单字段约束,因此等价于校验合并后的记录
func (p Patch) Validate() error {
	var (
		b       Book
		fields  []string
		missing []string
	)
	if p.Title != nil {
		fields = append(fields, "Title")
	}
	if p.Author != nil {
		fields = append(fields, "Author")
	}
	if p.Category != nil {
		fields = append(fields, "Category")
	}
	if p.Price != nil {
		fields = append(fields, "Price")
	}
	if p.Rating != nil {
		fields = append(fields, "Rating")
	}
	if p.PublishedDate != nil && p.PublishedDate.IsZero() {
		missing = append(missing, "publishedDate")
	}

	p.ApplyTo(&b)
	return validatePartial(&b, fields, missing)
}
