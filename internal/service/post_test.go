package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialwave/internal/model"
	"socialwave/internal/queue"
)

func postAuthorRepo() *mockUserRepository {
	return &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "author"}, nil
		},
	}
}

func TestPostService_Create_Success(t *testing.T) {
	publisher := &mockPublisher{}
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), publisher)

	post, err := svc.Create(context.Background(), 5, model.CreatePostRequest{Body: "hello"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if post.AuthorID != 5 {
		t.Errorf("author id = %d, want 5", post.AuthorID)
	}
	// Username is snapshotted from the author record, not the request
	if post.AuthorUsername != "author" {
		t.Errorf("author username = %q, want %q", post.AuthorUsername, "author")
	}
	if post.Likes == nil || post.Comments == nil {
		t.Error("new post should carry empty likes and comments, not nil")
	}

	if len(publisher.published) != 1 || publisher.published[0].Type != queue.EventPostCreated {
		t.Errorf("published events = %+v, want one post_created", publisher.published)
	}
}

func TestPostService_Create_EmptyContent(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), nil)

	_, err := svc.Create(context.Background(), 5, model.CreatePostRequest{})
	if !errors.Is(err, model.ErrEmptyContent) {
		t.Errorf("error = %v, want ErrEmptyContent", err)
	}
}

func TestPostService_Create_ImageOnly(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), nil)

	post, err := svc.Create(context.Background(), 5, model.CreatePostRequest{Image: "blob"})
	if err != nil {
		t.Fatalf("image-only post should be accepted, got: %v", err)
	}
	if post.Image != "blob" {
		t.Errorf("image = %q, want %q", post.Image, "blob")
	}
}

func TestPostService_Create_PublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("stream down")}
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), publisher)

	if _, err := svc.Create(context.Background(), 5, model.CreatePostRequest{Body: "hello"}); err != nil {
		t.Fatalf("create should survive a publish failure, got: %v", err)
	}
}

func TestPostService_Delete_Authorization(t *testing.T) {
	storedPost := &model.Post{ID: 10, AuthorID: 42, AuthorUsername: "alice"}

	tests := []struct {
		name             string
		actingIdentifier string
		wantErr          error
	}{
		{name: "by author id", actingIdentifier: "42", wantErr: nil},
		{name: "by author username", actingIdentifier: "alice", wantErr: nil},
		{name: "wrong id", actingIdentifier: "7", wantErr: model.ErrNotPostOwner},
		{name: "wrong username", actingIdentifier: "mallory", wantErr: model.ErrNotPostOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := &mockPostRepository{
				getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
					return storedPost, nil
				},
			}
			svc := NewPostService(postRepo, &mockCommentRepository{}, postAuthorRepo(), nil)

			err := svc.Delete(context.Background(), 10, tt.actingIdentifier)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			wantDeletes := 0
			if tt.wantErr == nil {
				wantDeletes = 1
			}
			if len(postRepo.deleteCalls) != wantDeletes {
				t.Errorf("delete calls = %d, want %d", len(postRepo.deleteCalls), wantDeletes)
			}
		})
	}
}

func TestPostService_Delete_NotFound(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), nil)

	err := svc.Delete(context.Background(), 99, "42")
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_Delete_PublishesDeletedEvent(t *testing.T) {
	publisher := &mockPublisher{}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, AuthorID: 42, AuthorUsername: "alice"}, nil
		},
	}
	svc := NewPostService(postRepo, &mockCommentRepository{}, postAuthorRepo(), publisher)

	if err := svc.Delete(context.Background(), 10, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(publisher.published) != 1 || publisher.published[0].Type != queue.EventPostDeleted {
		t.Errorf("published events = %+v, want one post_deleted", publisher.published)
	}
}

func TestPostService_ToggleLike_Toggles(t *testing.T) {
	// Stateful like set behind the mock functions
	likes := map[int64]bool{}
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) { return true, nil },
		toggleLikeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			if likes[userID] {
				delete(likes, userID)
				return false, nil
			}
			likes[userID] = true
			return true, nil
		},
		getLikerIDsFn: func(ctx context.Context, postID int64) ([]int64, error) {
			var ids []int64
			for id := range likes {
				ids = append(ids, id)
			}
			return ids, nil
		},
	}
	svc := NewPostService(postRepo, &mockCommentRepository{}, postAuthorRepo(), nil)

	result, err := svc.ToggleLike(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if !result.Liked || len(result.Likes) != 1 || result.Likes[0] != 5 {
		t.Errorf("first toggle: liked=%v likes=%v, want liked with [5]", result.Liked, result.Likes)
	}

	result, err = svc.ToggleLike(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if result.Liked || len(result.Likes) != 0 {
		t.Errorf("second toggle: liked=%v likes=%v, want unliked with empty set", result.Liked, result.Likes)
	}
}

func TestPostService_ToggleLike_PostNotFound(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), nil)

	_, err := svc.ToggleLike(context.Background(), 99, 5)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_AddComment_ReturnsNewestFirst(t *testing.T) {
	now := time.Now()
	commentRepo := &mockCommentRepository{
		getByPostIDFn: func(ctx context.Context, postID int64) ([]model.Comment, error) {
			return []model.Comment{
				{AuthorID: 5, Text: "second", CreatedAt: now},
				{AuthorID: 3, Text: "first", CreatedAt: now.Add(-time.Minute)},
			}, nil
		},
	}
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) { return true, nil },
	}
	svc := NewPostService(postRepo, commentRepo, postAuthorRepo(), nil)

	comments, err := svc.AddComment(context.Background(), 10, 5, model.CreateCommentRequest{Text: "second"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Text != "second" {
		t.Errorf("first comment = %q, want the newest one", comments[0].Text)
	}
}

func TestPostService_AddComment_EmptyTextAccepted(t *testing.T) {
	var createdText *string
	commentRepo := &mockCommentRepository{
		createFn: func(ctx context.Context, postID, authorID int64, authorUsername, text string) (*model.Comment, error) {
			createdText = &text
			return &model.Comment{PostID: postID, AuthorID: authorID, Text: text}, nil
		},
	}
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) { return true, nil },
	}
	svc := NewPostService(postRepo, commentRepo, postAuthorRepo(), nil)

	if _, err := svc.AddComment(context.Background(), 10, 5, model.CreateCommentRequest{}); err != nil {
		t.Fatalf("empty comment should be accepted, got: %v", err)
	}
	if createdText == nil || *createdText != "" {
		t.Error("comment should be stored with empty text")
	}
}

func TestPostService_AddComment_PostNotFound(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, postAuthorRepo(), nil)

	_, err := svc.AddComment(context.Background(), 99, 5, model.CreateCommentRequest{Text: "hi"})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_ListByUsername_Hydrates(t *testing.T) {
	postRepo := &mockPostRepository{
		listByUsernameFn: func(ctx context.Context, username string) ([]model.Post, error) {
			return []model.Post{{ID: 2, AuthorUsername: username}, {ID: 1, AuthorUsername: username}}, nil
		},
		getLikersByPostIDsFn: func(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
			return map[int64][]int64{2: {7}}, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByPostIDsFn: func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
			return map[int64][]model.Comment{1: {{Text: "hey"}}}, nil
		},
	}
	svc := NewPostService(postRepo, commentRepo, postAuthorRepo(), nil)

	posts, err := svc.ListByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
	if len(posts[0].Likes) != 1 || posts[0].Likes[0] != 7 {
		t.Errorf("post 2 likes = %v, want [7]", posts[0].Likes)
	}
	if posts[0].Comments == nil {
		t.Error("post without comments should get an empty slice, not nil")
	}
	if len(posts[1].Comments) != 1 || posts[1].Comments[0].Text != "hey" {
		t.Errorf("post 1 comments = %v, want one", posts[1].Comments)
	}
	if posts[1].Likes == nil {
		t.Error("post without likes should get an empty slice, not nil")
	}
}
