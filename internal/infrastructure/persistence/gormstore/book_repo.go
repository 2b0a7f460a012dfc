package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// sortColumns JSON字段名 → 列名
var sortColumns = map[string]string{
	book.SortByTitle:         "title",
	book.SortByAuthor:        "author",
	book.SortByCategory:      "category",
	book.SortByPrice:         "price",
	book.SortByRating:        "rating",
	book.SortByPublishedDate: "published_date",
	book.SortByCreatedAt:     "created_at",
	book.SortByUpdatedAt:     "updated_at",
}

// bookRepository 图书仓储的GORM实现
type bookRepository struct {
	db *gorm.DB
	tx *TxManager
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db, tx: NewTxManager(db)}
}

// Create 创建图书(ID为UUIDv4)
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := getDB(ctx, r.db).Create(toBookModel(b)).Error; err != nil {
		b.ID = ""
		return translateError(err, "create book")
	}
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "find book")
	}
	return toBookEntity(&model), nil
}

// Find 条件查询(排序 + skip/limit)
func (r *bookRepository) Find(ctx context.Context, q book.Query) ([]*book.Book, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns[book.DefaultSortBy]
	}

	// id作为第二排序键,保证排序值相同时分页稳定
	query := applyFilter(getDB(ctx, r.db).Model(&BookModel{}), q.Filter).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Skip)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list books")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// Count 统计匹配总数
func (r *bookRepository) Count(ctx context.Context, f book.Filter) (int64, error) {
	var total int64
	if err := applyFilter(getDB(ctx, r.db).Model(&BookModel{}), f).Count(&total).Error; err != nil {
		return 0, apperrors.Wrap(err, "count books")
	}
	return total, nil
}

// Update 部分更新
// 在事务中锁定行 → 合并 → 校验合并结果 → 保存,避免并发更新互相覆盖
func (r *bookRepository) Update(ctx context.Context, id string, patch book.Patch) (*book.Book, error) {
	var updated *book.Book
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		current, err := r.LockByID(ctx, id)
		if err != nil {
			return err
		}

		patch.ApplyTo(current)
		if err := current.Validate(); err != nil {
			return err
		}
		current.Touch(time.Now())

		if err := getDB(ctx, r.db).Save(toBookModel(current)).Error; err != nil {
			return translateError(err, "update book")
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 物理删除
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "delete book")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
// 必须在TxManager.Transaction内调用;SQLite没有行锁,事务本身已串行化写入
func (r *bookRepository) LockByID(ctx context.Context, id string) (*book.Book, error) {
	db := getDB(ctx, r.db)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model BookModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "lock book")
	}
	return toBookEntity(&model), nil
}

// applyFilter 组装WHERE条件
// 文本条件用LOWER(col) LIKE,与MongoDB的不区分大小写正则语义一致
func applyFilter(db *gorm.DB, f book.Filter) *gorm.DB {
	if f.Author != "" {
		db = db.Where("LOWER(author) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.Author))
	}
	if f.Category != "" {
		db = db.Where("LOWER(category) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.Category))
	}
	if f.MinRating != nil {
		db = db.Where("rating >= ?", *f.MinRating)
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		db = db.Where("(LOWER(title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(author) LIKE ? ESCAPE '"+likeEscape+"')", p, p)
	}
	return db
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Price:         b.Price,
		Rating:        b.Rating,
		PublishedDate: b.PublishedDate,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		Category:      m.Category,
		Price:         m.Price,
		Rating:        m.Rating,
		PublishedDate: m.PublishedDate.UTC(),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}
