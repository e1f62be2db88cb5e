package blogservice

import (
	"context"
	"time"
)

// Author is the non-owning back-reference a blog post keeps to the user that
// created it.
type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata describes the page window returned by a paginated listing.
type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	FirstPage    int `json:"first_page"`
	LastPage     int `json:"last_page"`
	TotalRecords int `json:"total_records"`
}

func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}

	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     (totalRecords + pageSize - 1) / pageSize,
		TotalRecords: totalRecords,
	}
}

// BlogStore is the persistence capability the service is composed with.
type BlogStore interface {
	Insert(ctx context.Context, blog *Blog) error
	GetByID(ctx context.Context, id int) (*Blog, error)
	GetPage(ctx context.Context, page, pageSize int) ([]Blog, int, error)
	GetByAuthor(ctx context.Context, authorID int) ([]Blog, error)
	Update(ctx context.Context, blog *Blog) error
	Delete(ctx context.Context, id, authorID int) error
}

type BlogService struct {
	store BlogStore
}

type CreateBlogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  Author `json:"-"`
}
