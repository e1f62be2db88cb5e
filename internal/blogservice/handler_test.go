package blogservice

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelmoss/inkpost/internal/common"
)

// insertTestUser creates a user row directly so blog posts have an author to
// reference.
func insertTestUser(db *sql.DB, name, email string) (Author, error) {
	query := `
		INSERT INTO users (email, password, name, role)
		VALUES ($1, $2, $3, 'USER')
		RETURNING id`

	var author Author
	author.Name = name
	author.Email = email

	err := db.QueryRow(query, email, []byte("not-a-real-hash"), name).Scan(&author.ID)
	if err != nil {
		return Author{}, err
	}

	return author, nil
}

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, Author, Author) {
	db := common.TestDB("file://../../migrations", t)

	alice, err := insertTestUser(db, "Alice", "alice@example.com")
	require.NoError(t, err)

	bob, err := insertTestUser(db, "Bob", "bob@example.com")
	require.NoError(t, err)

	return NewBlogService(NewPostgresBlogStore(db)), db, alice, bob
}

func TestCreateBlog(t *testing.T) {
	s, _, alice, _ := setupTestEnvironment(t)
	ctx := context.Background()

	t.Run("valid blog", func(t *testing.T) {
		blog, err := s.CreateBlog(ctx, &CreateBlogRequest{
			Title:   "Test Blog",
			Content: "This is a test blog.",
			Author:  alice,
		})
		require.NoError(t, err)

		assert.NotZero(t, blog.ID)
		assert.Equal(t, "Test Blog", blog.Title)
		assert.Equal(t, alice.ID, blog.Author.ID)
		assert.False(t, blog.CreatedAt.IsZero())
		assert.True(t, blog.UpdatedAt.Equal(blog.CreatedAt))
	})

	t.Run("missing author", func(t *testing.T) {
		_, err := s.CreateBlog(ctx, &CreateBlogRequest{
			Title:   "Orphan",
			Content: "No such author.",
			Author:  Author{ID: 99999},
		})
		assert.ErrorIs(t, err, ErrAuthorNotFound)
	})

	testCases := []struct {
		name    string
		req     *CreateBlogRequest
		wantErr common.ValidationError
	}{
		{
			name:    "empty title",
			req:     &CreateBlogRequest{Title: "", Content: "Content."},
			wantErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name:    "empty content",
			req:     &CreateBlogRequest{Title: "Title", Content: ""},
			wantErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Author = alice
			_, err := s.CreateBlog(ctx, tc.req)

			var validationErr common.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.wantErr.Errors, validationErr.Errors)
		})
	}
}

func TestGetBlogByID(t *testing.T) {
	s, _, alice, _ := setupTestEnvironment(t)
	ctx := context.Background()

	created, err := s.CreateBlog(ctx, &CreateBlogRequest{
		Title:   "Findable",
		Content: "Content.",
		Author:  alice,
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		blog, err := s.GetBlogByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, blog.ID)
		assert.Equal(t, "Findable", blog.Title)
		assert.Equal(t, alice.Name, blog.Author.Name)
		assert.Equal(t, alice.Email, blog.Author.Email)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetBlogByID(ctx, 99999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := s.GetBlogByID(ctx, 0)

		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestGetBlogs(t *testing.T) {
	s, _, alice, bob := setupTestEnvironment(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		author := alice
		if i%2 == 0 {
			author = bob
		}
		_, err := s.CreateBlog(ctx, &CreateBlogRequest{
			Title:   fmt.Sprintf("Post %d", i),
			Content: "Content.",
			Author:  author,
		})
		require.NoError(t, err)
	}

	t.Run("default page", func(t *testing.T) {
		blogs, metadata, err := s.GetBlogs(ctx, 0, 0)
		require.NoError(t, err)

		assert.Len(t, blogs, 10)
		assert.Equal(t, 1, metadata.CurrentPage)
		assert.Equal(t, 10, metadata.PageSize)
		assert.Equal(t, 2, metadata.LastPage)
		assert.Equal(t, 12, metadata.TotalRecords)
	})

	t.Run("id ascending order", func(t *testing.T) {
		blogs, _, err := s.GetBlogs(ctx, 1, 12)
		require.NoError(t, err)

		for i := 1; i < len(blogs); i++ {
			assert.Less(t, blogs[i-1].ID, blogs[i].ID)
		}
	})

	t.Run("last page", func(t *testing.T) {
		blogs, metadata, err := s.GetBlogs(ctx, 2, 10)
		require.NoError(t, err)

		assert.Len(t, blogs, 2)
		assert.Equal(t, 2, metadata.CurrentPage)
	})

	t.Run("page beyond the end", func(t *testing.T) {
		blogs, metadata, err := s.GetBlogs(ctx, 99, 10)
		require.NoError(t, err)

		assert.Empty(t, blogs)
		assert.Zero(t, metadata.TotalRecords)
	})

	t.Run("page beyond the maximum", func(t *testing.T) {
		_, _, err := s.GetBlogs(ctx, math.MaxInt, 10)

		var validationErr common.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Errors, "page")
	})
}

func TestGetBlogsByAuthor(t *testing.T) {
	s, _, alice, bob := setupTestEnvironment(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := s.CreateBlog(ctx, &CreateBlogRequest{
			Title:   fmt.Sprintf("Post %d", i),
			Content: "Content.",
			Author:  alice,
		})
		require.NoError(t, err)
	}

	t.Run("author with posts", func(t *testing.T) {
		blogs, err := s.GetBlogsByAuthor(ctx, alice.ID)
		require.NoError(t, err)

		assert.Len(t, blogs, 3)
		for _, blog := range blogs {
			assert.Equal(t, alice.ID, blog.Author.ID)
		}
	})

	t.Run("author without posts gets an empty list", func(t *testing.T) {
		blogs, err := s.GetBlogsByAuthor(ctx, bob.ID)
		require.NoError(t, err)

		assert.NotNil(t, blogs)
		assert.Empty(t, blogs)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := s.GetBlogsByAuthor(ctx, 99999)
		assert.ErrorIs(t, err, ErrAuthorNotFound)
	})
}

func TestUpdateBlog(t *testing.T) {
	s, _, alice, bob := setupTestEnvironment(t)
	ctx := context.Background()

	created, err := s.CreateBlog(ctx, &CreateBlogRequest{
		Title:   "Original",
		Content: "Original content.",
		Author:  alice,
	})
	require.NoError(t, err)

	t.Run("non-owner is rejected and record untouched", func(t *testing.T) {
		_, err := s.UpdateBlog(ctx, created.ID, bob.ID, "Hijacked", "Hijacked content.")
		assert.ErrorIs(t, err, ErrNotOwner)

		blog, err := s.GetBlogByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", blog.Title)
		assert.Equal(t, "Original content.", blog.Content)
		assert.True(t, blog.UpdatedAt.Equal(created.UpdatedAt))
	})

	t.Run("owner updates", func(t *testing.T) {
		updated, err := s.UpdateBlog(ctx, created.ID, alice.ID, "New Title", "New content.")
		require.NoError(t, err)

		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "New content.", updated.Content)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := s.UpdateBlog(ctx, 99999, alice.ID, "Title", "Content.")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestDeleteBlog(t *testing.T) {
	s, _, alice, bob := setupTestEnvironment(t)
	ctx := context.Background()

	created, err := s.CreateBlog(ctx, &CreateBlogRequest{
		Title:   "Doomed",
		Content: "Content.",
		Author:  alice,
	})
	require.NoError(t, err)

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := s.DeleteBlog(ctx, created.ID, bob.ID)
		assert.ErrorIs(t, err, ErrNotOwner)

		_, err = s.GetBlogByID(ctx, created.ID)
		assert.NoError(t, err)
	})

	t.Run("owner deletes", func(t *testing.T) {
		err := s.DeleteBlog(ctx, created.ID, alice.ID)
		require.NoError(t, err)

		_, err = s.GetBlogByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("already deleted", func(t *testing.T) {
		err := s.DeleteBlog(ctx, created.ID, alice.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
