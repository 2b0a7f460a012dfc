package mongostore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func newBook(t *testing.T, title, author, category string, price, rating float64) *book.Book {
	t.Helper()
	d := time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := book.NewBook(book.Draft{
		Title: title, Author: author, Category: category,
		Price: &price, Rating: &rating, PublishedDate: &d,
	})
	require.NoError(t, err)
	return b
}

func seed(t *testing.T, repo book.Repository, books ...*book.Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, repo.Create(context.Background(), b))
	}
}

func TestBookCRUD(t *testing.T) {
	repo := NewBookRepository(newTestDatabase(t))
	ctx := context.Background()

	b := newBook(t, "Dune", "Herbert", "SciFi", 15, 4.5)
	require.NoError(t, repo.Create(ctx, b))
	assert.Len(t, b.ID, 24)

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, found)

	updated, err := repo.Update(ctx, b.ID, book.Patch{Title: str("$title"), Price: f64(18)})
	require.NoError(t, err)
	assert.Equal(t, "$title", updated.Title, "以$开头的值按字面量保存")
	assert.Equal(t, 18.0, updated.Price)
	assert.Equal(t, "Herbert", updated.Author)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(b.CreatedAt))

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), book.ErrBookNotFound)
	_, err = repo.Update(ctx, b.ID, book.Patch{Price: f64(1)})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	repo := NewBookRepository(newTestDatabase(t))
	ctx := context.Background()

	b := newBook(t, "Dune", "Herbert", "SciFi", 15, 4.5)
	seed(t, repo, b)

	prev := b.UpdatedAt
	for i := 0; i < 5; i++ {
		updated, err := repo.Update(ctx, b.ID, book.Patch{Price: f64(float64(i))})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev))
		prev = updated.UpdatedAt
	}
}

func TestPublishedDateRoundTrip(t *testing.T) {
	svc := book.NewService(NewBookRepository(newTestDatabase(t)))
	ctx := context.Background()

	d := time.Date(1965, 8, 1, 0, 0, 0, 987654321, time.UTC)
	created, err := svc.CreateBook(ctx, book.Draft{Title: "Dune", Author: "Herbert", Category: "SciFi",
		Price: f64(15), Rating: f64(4.5), PublishedDate: &d})
	require.NoError(t, err)

	found, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	later := d.Add(time.Hour + 456789)
	updated, err := svc.UpdateBook(ctx, created.ID, book.Patch{PublishedDate: &later})
	require.NoError(t, err)
	found, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, found)
}

func TestMalformedIDIsStoreError(t *testing.T) {
	repo := NewBookRepository(newTestDatabase(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "not-an-object-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
	assert.NotErrorIs(t, err, book.ErrBookNotFound)

	err = repo.Delete(ctx, "not-an-object-id")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
}

func TestFindFilters(t *testing.T) {
	repo := NewBookRepository(newTestDatabase(t))
	ctx := context.Background()

	seed(t, repo,
		newBook(t, "Dune", "Frank Herbert", "SciFi", 15, 4.5),
		newBook(t, "Emma", "Jane Austen", "Classic Fiction", 9, 3.9),
		newBook(t, "Neuromancer", "William Gibson", "Science Fiction", 12, 4.1),
		newBook(t, "100% Pure (Vol.1)", "Anon", "Cooking", 5, 2),
		newBook(t, "Über Alles", "Émile Zola", "Poetry", 8, 3),
	)

	titles := func(f book.Filter) []string {
		t.Helper()
		books, err := repo.Find(ctx, book.Query{Filter: f, SortBy: book.SortByTitle, Limit: 10})
		require.NoError(t, err)
		total, err := repo.Count(ctx, f)
		require.NoError(t, err)
		require.Equal(t, int64(len(books)), total)

		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.Title
		}
		return out
	}

	assert.Equal(t, []string{"Emma", "Neuromancer"}, titles(book.Filter{Category: "fiction"}))
	assert.Equal(t, []string{"Dune", "Neuromancer"}, titles(book.Filter{MinRating: f64(4)}))
	assert.Equal(t, []string{"Neuromancer"}, titles(book.Filter{Search: "GIBSON"}))
	assert.Equal(t, []string{"Emma"}, titles(book.Filter{Author: "austen", Category: "fic"}))
	assert.Equal(t, []string{"Über Alles"}, titles(book.Filter{Search: "über"}))
	assert.Equal(t, []string{"Über Alles"}, titles(book.Filter{Author: "ÉMILE"}))

	// 正则元字符按字面量匹配
	assert.Equal(t, []string{"100% Pure (Vol.1)"}, titles(book.Filter{Search: "(vol.1)"}))
	assert.Empty(t, titles(book.Filter{Search: "D.ne"}))
}

func TestFindPagination(t *testing.T) {
	repo := NewBookRepository(newTestDatabase(t))
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seed(t, repo, newBook(t, fmt.Sprintf("Book %d", i), "Author", "Fiction", float64(i), 3))
	}

	q := book.Query{SortBy: book.SortByPrice, Desc: true, Skip: 3, Limit: 3}
	books, err := repo.Find(ctx, q)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []float64{3, 2, 1}, []float64{books[0].Price, books[1].Price, books[2].Price})

	total, err := repo.Count(ctx, q.Filter)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()

	u := user.NewUser("Reader@Example.com", "hash", "reader")
	require.NoError(t, repo.Create(ctx, u))
	assert.Len(t, u.ID, 24)

	found, err := repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	found, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", found.Nickname)

	err = repo.Create(ctx, user.NewUser("reader@example.com", "other", "again"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEnsureIndexesIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, EnsureIndexes(ctx, db))

	cursor, err := db.Collection(BooksCollection).Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))

	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx["name"].(string))
	}
	assert.Contains(t, names, "books_text")
}
