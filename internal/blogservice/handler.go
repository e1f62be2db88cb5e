package blogservice

import (
	"context"
	"errors"

	"github.com/hazelmoss/inkpost/internal/common"
)

var (
	// ErrNotOwner signals that the caller is not the author of the post. The
	// API layer renders it the same as a missing record so non-owners cannot
	// probe for post existence.
	ErrNotOwner = errors.New("not the author of this blog post")
)

func NewBlogService(store BlogStore) *BlogService {
	return &BlogService{store: store}
}

// CreateBlog persists a new blog post. The author is whoever the caller
// authenticated as; a request-supplied author is never trusted.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateInt(v, req.Author.ID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := Blog{
		Title:   req.Title,
		Content: sanitizeMarkdown(req.Content),
		Author:  req.Author,
	}

	if err := s.store.Insert(ctx, &blog); err != nil {
		return nil, err
	}

	return &blog, nil
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.store.GetByID(ctx, id)
}

// maxPage bounds the page number so the OFFSET computed from it cannot
// overflow.
const maxPage = 10_000_000

// GetBlogs returns one page of all blog posts in id order, with page metadata.
// Defaults are page 1 and page size 10.
func (s *BlogService) GetBlogs(ctx context.Context, page, pageSize int) ([]Blog, Metadata, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 10
	}

	if pageSize > 100 {
		pageSize = 100
	}

	v := common.NewValidator()
	v.Check(page <= maxPage, "page", "must be a maximum of 10 million")
	if !v.Valid() {
		return nil, Metadata{}, v.ValidationError()
	}

	blogs, total, err := s.store.GetPage(ctx, page, pageSize)
	if err != nil {
		return nil, Metadata{}, err
	}

	return blogs, calculateMetadata(total, page, pageSize), nil
}

// GetBlogsByAuthor returns all blog posts written by one user.
func (s *BlogService) GetBlogsByAuthor(ctx context.Context, authorID int) ([]Blog, error) {
	v := common.NewValidator()
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.store.GetByAuthor(ctx, authorID)
}

// UpdateBlog overwrites title and content of an existing post. Only the author
// may update it; everyone else gets ErrNotOwner and the record is untouched.
func (s *BlogService) UpdateBlog(ctx context.Context, id, authorID int, title, content string) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, authorID, "author_id")
	validateTitle(v, title)
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.Author.ID != authorID {
		return nil, ErrNotOwner
	}

	blog.Title = title
	blog.Content = sanitizeMarkdown(content)

	// A concurrent delete between the read and this write surfaces as
	// ErrRecordNotFound from the store.
	if err := s.store.Update(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

// DeleteBlog removes a post permanently. Same ownership policy as UpdateBlog.
func (s *BlogService) DeleteBlog(ctx context.Context, id, authorID int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.Author.ID != authorID {
		return ErrNotOwner
	}

	return s.store.Delete(ctx, id, authorID)
}
