package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

type CreatePostInput struct {
	UserID           int64
	Title            string
	Content          string
	ImageURL         *string
	AuthorName       *string
	AuthorUsername   *string
	AuthorProfilePic *string
}

const postColumns = `id, user_id, title, content, image_url, author_name, author_username, author_profile_pic, created_at, updated_at`

func scanPost(row interface{ Scan(dest ...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.AuthorName,
		&post.AuthorUsername,
		&post.AuthorProfilePic,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, title, content, image_url, author_name, author_username, author_profile_pic)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRow(ctx, query,
		input.UserID,
		input.Title,
		input.Content,
		input.ImageURL,
		input.AuthorName,
		input.AuthorUsername,
		input.AuthorProfilePic,
	))
}

func (r *PostRepository) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, postID))
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	return posts, total, rows.Err()
}

func (r *PostRepository) ListByAuthor(ctx context.Context, userID int64) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) DeleteOwn(ctx context.Context, postID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
