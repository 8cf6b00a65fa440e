package sqlite

import (
	"context"

	"github.com/eldrun/eldrun/internal/persistence"
)

// ForumRepository implements persistence.ForumRepository using SQLite.
type ForumRepository struct {
	pool *ConnectionPool
}

// NewForumRepository creates a new SQLite forum repository.
func NewForumRepository(pool *ConnectionPool) *ForumRepository {
	return &ForumRepository{pool: pool}
}

// CreateThread inserts a new thread.
func (r *ForumRepository) CreateThread(ctx context.Context, thread persistence.ForumThread) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO forum_threads (id, author_id, title, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		thread.ID, thread.AuthorID, thread.Title, thread.Body, formatTime(thread.CreatedAt),
	)
	return mapError(err)
}

// GetThread retrieves one thread by ID.
func (r *ForumRepository) GetThread(ctx context.Context, id string) (persistence.ForumThread, error) {
	var (
		thread    persistence.ForumThread
		createdAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, body, created_at
		FROM forum_threads WHERE id = ?`, id,
	).Scan(&thread.ID, &thread.AuthorID, &thread.Title, &thread.Body, &createdAt)
	if err != nil {
		return persistence.ForumThread{}, mapError(err)
	}
	if thread.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ForumThread{}, err
	}
	return thread, nil
}

// ListThreads returns up to limit threads, newest first.
func (r *ForumRepository) ListThreads(ctx context.Context, limit int) ([]persistence.ForumThread, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, author_id, title, body, created_at
		FROM forum_threads
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var threads []persistence.ForumThread
	for rows.Next() {
		var (
			thread    persistence.ForumThread
			createdAt string
		)
		if err := rows.Scan(&thread.ID, &thread.AuthorID, &thread.Title, &thread.Body, &createdAt); err != nil {
			return nil, err
		}
		if thread.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

// CreatePost inserts a reply. The thread foreign key catches orphan posts.
func (r *ForumRepository) CreatePost(ctx context.Context, post persistence.ForumPost) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO forum_posts (id, thread_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		post.ID, post.ThreadID, post.AuthorID, post.Body, formatTime(post.CreatedAt),
	)
	return mapError(err)
}

// ListPosts returns every post in a thread, oldest first.
func (r *ForumRepository) ListPosts(ctx context.Context, threadID string) ([]persistence.ForumPost, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, thread_id, author_id, body, created_at
		FROM forum_posts
		WHERE thread_id = ?
		ORDER BY created_at ASC, id ASC`, threadID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var posts []persistence.ForumPost
	for rows.Next() {
		var (
			post      persistence.ForumPost
			createdAt string
		)
		if err := rows.Scan(&post.ID, &post.ThreadID, &post.AuthorID, &post.Body, &createdAt); err != nil {
			return nil, err
		}
		if post.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
