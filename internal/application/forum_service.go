package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

const (
	maxThreadTitleLength = 120
	maxPostBodyLength    = 10_000
	threadListCap        = 50
)

// ForumService manages discussion threads and replies.
type ForumService struct {
	forum       persistence.ForumRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewForumService wires dependencies for the forum service.
func NewForumService(forum persistence.ForumRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ForumService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ForumService{
		forum:       forum,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateThread validates and persists a new thread.
func (s *ForumService) CreateThread(ctx context.Context, principal Principal, input ThreadInput) (thread persistence.ForumThread, err error) {
	logger := serviceLogger(ctx, s.logger, "forum", "create_thread", "account_id", principal.AccountID)
	defer func() {
		if err != nil {
			logger.Warn("thread rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("thread created", "thread_id", thread.ID)
	}()

	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	vErr := &ValidationError{}
	if title == "" || len(title) > maxThreadTitleLength {
		vErr.add("title", fmt.Sprintf("Title is required and capped at %d characters", maxThreadTitleLength))
	}
	if body == "" || len(body) > maxPostBodyLength {
		vErr.add("body", fmt.Sprintf("Body is required and capped at %d characters", maxPostBodyLength))
	}
	if vErr.HasErrors() {
		return persistence.ForumThread{}, vErr
	}

	thread = persistence.ForumThread{
		ID:        s.idGenerator(),
		AuthorID:  principal.AccountID,
		Title:     title,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.forum.CreateThread(ctx, thread); err != nil {
		return persistence.ForumThread{}, fmt.Errorf("create thread: %w", err)
	}
	return thread, nil
}

// ListThreads returns the newest threads first.
func (s *ForumService) ListThreads(ctx context.Context) ([]persistence.ForumThread, error) {
	threads, err := s.forum.ListThreads(ctx, threadListCap)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}

// Thread returns one thread with its replies, oldest first.
func (s *ForumService) Thread(ctx context.Context, threadID string) (ThreadDetail, error) {
	thread, err := s.forum.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ThreadDetail{}, ErrNotFound
		}
		return ThreadDetail{}, fmt.Errorf("get thread: %w", err)
	}
	posts, err := s.forum.ListPosts(ctx, thread.ID)
	if err != nil {
		return ThreadDetail{}, fmt.Errorf("list posts: %w", err)
	}
	return ThreadDetail{Thread: thread, Posts: posts}, nil
}

// Reply appends a post to an existing thread.
func (s *ForumService) Reply(ctx context.Context, principal Principal, threadID, body string) (post persistence.ForumPost, err error) {
	logger := serviceLogger(ctx, s.logger, "forum", "reply", "account_id", principal.AccountID, "thread_id", threadID)
	defer func() {
		if err != nil {
			logger.Warn("reply rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("reply created", "post_id", post.ID)
	}()

	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxPostBodyLength {
		vErr := &ValidationError{}
		vErr.add("body", fmt.Sprintf("Body is required and capped at %d characters", maxPostBodyLength))
		return persistence.ForumPost{}, vErr
	}

	if _, err := s.forum.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.ForumPost{}, ErrNotFound
		}
		return persistence.ForumPost{}, fmt.Errorf("get thread: %w", err)
	}

	post = persistence.ForumPost{
		ID:        s.idGenerator(),
		ThreadID:  threadID,
		AuthorID:  principal.AccountID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.forum.CreatePost(ctx, post); err != nil {
		return persistence.ForumPost{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}
