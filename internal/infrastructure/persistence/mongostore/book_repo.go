package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// bookDocument books集合文档
type bookDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Author        string             `bson:"author"`
	Category      string             `bson:"category"`
	Price         float64            `bson:"price"`
	Rating        float64            `bson:"rating"`
	PublishedDate time.Time          `bson:"publishedDate"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type bookRepository struct {
	coll *mongo.Collection
}

// NewBookRepository 创建图书仓储(MongoDB实现)
func NewBookRepository(db *mongo.Database) book.Repository {
	return &bookRepository{coll: db.Collection(BooksCollection)}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toBookDocument(b)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateError(err, "create book")
	}

	b.ID = doc.ID.Hex()
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc bookDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "find book")
	}
	return toBookEntity(&doc), nil
}

func (r *bookRepository) Find(ctx context.Context, q book.Query) ([]*book.Book, error) {
	opts := options.Find().SetSort(buildSort(q.SortBy, q.Desc)).SetSkip(int64(q.Skip))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.coll.Find(ctx, buildFilter(q.Filter), opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "list books")
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, "decode books")
	}

	books := make([]*book.Book, len(docs))
	for i := range docs {
		books[i] = toBookEntity(&docs[i])
	}
	return books, nil
}

func (r *bookRepository) Count(ctx context.Context, f book.Filter) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, apperrors.Wrap(err, "count books")
	}
	return total, nil
}

// Update 用聚合管道做单文档原子更新
// updatedAt = max($$NOW, updatedAt+1ms),保证严格递增
func (r *bookRepository) Update(ctx context.Context, id string, patch book.Patch) (*book.Book, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, buildUpdate(patch), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, book.ErrBookNotFound
		}
		return nil, translateError(err, "update book")
	}
	return toBookEntity(&doc), nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.Wrap(err, "delete book")
	}
	if result.DeletedCount == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// buildFilter 组装查询条件
// 文本条件是大小写不敏感的子串匹配,用户输入经QuoteMeta转义后按字面量匹配
func buildFilter(f book.Filter) bson.M {
	filter := bson.M{}
	if f.Author != "" {
		filter["author"] = containsRegex(f.Author)
	}
	if f.Category != "" {
		filter["category"] = containsRegex(f.Category)
	}
	if f.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *f.MinRating}
	}
	if f.Search != "" {
		re := containsRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"author": re},
		}
	}
	return filter
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// buildSort 排序键,_id作为第二排序键保证分页稳定
// 文档字段名与JSON字段名一致,未知字段回退到默认排序
func buildSort(sortBy string, desc bool) bson.D {
	if !book.IsSortable(sortBy) {
		sortBy = book.DefaultSortBy
	}
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}}
}

// buildUpdate 把补丁转换为$set管道
// 管道里的字符串以$开头会被当作字段路径,所以值统一用$literal包裹
func buildUpdate(p book.Patch) mongo.Pipeline {
	set := bson.D{}
	add := func(key string, v interface{}) {
		set = append(set, bson.E{Key: key, Value: bson.M{"$literal": v}})
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Author != nil {
		add("author", *p.Author)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Rating != nil {
		add("rating", *p.Rating)
	}
	if p.PublishedDate != nil {
		add("publishedDate", p.PublishedDate.UTC())
	}
	set = append(set, bson.E{Key: "updatedAt", Value: bson.M{
		"$max": bson.A{"$$NOW", bson.M{"$add": bson.A{"$updatedAt", 1}}},
	}})

	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// parseID ObjectID十六进制字符串
// 格式错误按内部错误处理,与按ID查询失败的其他存储错误一致
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Wrapf(err, "invalid object id %q", id)
	}
	return oid, nil
}

func translateError(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateKey
	}
	return apperrors.Wrap(err, op)
}

func toBookDocument(b *book.Book) *bookDocument {
	return &bookDocument{
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Price:         b.Price,
		Rating:        b.Rating,
		PublishedDate: b.PublishedDate.UTC(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(d *bookDocument) *book.Book {
	return &book.Book{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Author:        d.Author,
		Category:      d.Category,
		Price:         d.Price,
		Rating:        d.Rating,
		PublishedDate: d.PublishedDate.UTC(),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}
