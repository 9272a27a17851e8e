package database

import (
	"errors"
	"testing"
	"time"
)

func TestVisiblePostsInCategoryFiltering(t *testing.T) {
	author := insertUser(t, "vis_author")
	pubCat := insertCategory(t, "vis-pub", true)
	hiddenCat := insertCategory(t, "vis-hidden", false)
	now := time.Now()

	visible := insertPost(t, "visible post", author, pubCat, true, now.Add(-time.Hour))
	insertPost(t, "draft post", author, pubCat, false, now.Add(-time.Hour))
	insertPost(t, "scheduled post", author, pubCat, true, now.Add(time.Hour))
	insertPost(t, "hidden category post", author, hiddenCat, true, now.Add(-time.Hour))

	count, err := CountVisiblePostsInCategory(pubCat, now)
	if err != nil {
		t.Fatalf("CountVisiblePostsInCategory failed: %v", err)
	}
	if count != 1 {
		t.Errorf("visible count in category = %d, want 1", count)
	}

	posts, err := VisiblePostsInCategory(pubCat, now, 10, 0)
	if err != nil {
		t.Fatalf("VisiblePostsInCategory failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != visible {
		t.Fatalf("got posts %+v, want only post %d", posts, visible)
	}

	count, err = CountVisiblePostsInCategory(hiddenCat, now)
	if err != nil {
		t.Fatalf("CountVisiblePostsInCategory failed: %v", err)
	}
	if count != 0 {
		t.Errorf("visible count in hidden category = %d, want 0", count)
	}
}

func TestVisiblePostsGlobalCount(t *testing.T) {
	now := time.Now()
	before, err := CountVisiblePosts(now)
	if err != nil {
		t.Fatalf("CountVisiblePosts failed: %v", err)
	}

	author := insertUser(t, "global_author")
	cat := insertCategory(t, "global-cat", true)
	insertPost(t, "counted post", author, cat, true, now.Add(-time.Minute))
	insertPost(t, "uncounted draft", author, cat, false, now.Add(-time.Minute))

	after, err := CountVisiblePosts(now)
	if err != nil {
		t.Fatalf("CountVisiblePosts failed: %v", err)
	}
	if after != before+1 {
		t.Errorf("CountVisiblePosts = %d, want %d", after, before+1)
	}
}

func TestVisiblePostsOrderedNewestFirst(t *testing.T) {
	author := insertUser(t, "order_author")
	cat := insertCategory(t, "order-cat", true)
	now := time.Now()

	oldest := insertPost(t, "oldest", author, cat, true, now.Add(-3*time.Hour))
	newest := insertPost(t, "newest", author, cat, true, now.Add(-1*time.Hour))
	middle := insertPost(t, "middle", author, cat, true, now.Add(-2*time.Hour))

	posts, err := VisiblePostsInCategory(cat, now, 10, 0)
	if err != nil {
		t.Fatalf("VisiblePostsInCategory failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	want := []int{newest, middle, oldest}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("position %d: got post %d (%q), want %d", i, posts[i].ID, posts[i].Title, id)
		}
	}
}

func TestVisiblePostsPagination(t *testing.T) {
	author := insertUser(t, "page_author")
	cat := insertCategory(t, "page-cat", true)
	now := time.Now()

	for i := 0; i < 3; i++ {
		insertPost(t, "page post", author, cat, true, now.Add(-time.Duration(i+1)*time.Hour))
	}

	page, err := VisiblePostsInCategory(cat, now, 2, 0)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("first page has %d posts, want 2", len(page))
	}
	page, err = VisiblePostsInCategory(cat, now, 2, 2)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("second page has %d posts, want 1", len(page))
	}
}

func TestPostsByAuthorIncludesDrafts(t *testing.T) {
	author := insertUser(t, "draft_author")
	cat := insertCategory(t, "draft-cat", true)
	now := time.Now()

	insertPost(t, "author visible", author, cat, true, now.Add(-time.Hour))
	insertPost(t, "author draft", author, cat, false, now.Add(-time.Hour))
	insertPost(t, "author scheduled", author, cat, true, now.Add(time.Hour))

	count, err := CountPostsByAuthor(author)
	if err != nil {
		t.Fatalf("CountPostsByAuthor failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountPostsByAuthor = %d, want 3 (drafts and scheduled included)", count)
	}

	posts, err := PostsByAuthor(author, 10, 0)
	if err != nil {
		t.Fatalf("PostsByAuthor failed: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("PostsByAuthor returned %d posts, want 3", len(posts))
	}
}

func TestPostByID(t *testing.T) {
	author := insertUser(t, "byid_author")
	cat := insertCategory(t, "byid-cat", true)
	id := insertPost(t, "findable", author, cat, true, time.Now().Add(-time.Hour))

	post, err := PostByID(id)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if post.Title != "findable" || post.Author != "byid_author" || post.CategorySlug != "byid-cat" {
		t.Errorf("unexpected post fields: %+v", post)
	}
	if !post.CategoryPublished {
		t.Error("CategoryPublished not set from the joined category")
	}

	if _, err := PostByID(999999); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("missing post: got %v, want ErrPostNotFound", err)
	}
}

func TestPostVisibleMethod(t *testing.T) {
	author := insertUser(t, "method_author")
	hiddenCat := insertCategory(t, "method-hidden", false)
	id := insertPost(t, "in hidden category", author, hiddenCat, true, time.Now().Add(-time.Hour))

	post, err := PostByID(id)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if post.Visible(time.Now()) {
		t.Error("post in an unpublished category reported as visible")
	}
}

func TestUpdatePost(t *testing.T) {
	author := insertUser(t, "upd_author")
	cat := insertCategory(t, "upd-cat", true)
	otherCat := insertCategory(t, "upd-other", true)
	id := insertPost(t, "before", author, cat, true, time.Now().Add(-time.Hour))

	newDate := time.Now().Add(-30 * time.Minute)
	if err := UpdatePost(id, "after", "new text", newDate, false, otherCat, nil); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	post, err := PostByID(id)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if post.Title != "after" || post.Text != "new text" || post.IsPublished || post.CategoryID != otherCat {
		t.Errorf("post not updated: %+v", post)
	}

	if err := UpdatePost(999999, "x", "x", time.Now(), true, cat, nil); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("updating missing post: got %v, want ErrPostNotFound", err)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	author := insertUser(t, "del_author")
	cat := insertCategory(t, "del-cat", true)
	id := insertPost(t, "doomed", author, cat, true, time.Now().Add(-time.Hour))

	commentID, err := CreateComment(id, author, "going with the post")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if err := DeletePost(id); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := PostByID(id); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("deleted post still found: %v", err)
	}
	if _, err := CommentByID(commentID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("comment survived post deletion: %v", err)
	}

	if err := DeletePost(id); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("double delete: got %v, want ErrPostNotFound", err)
	}
}

func TestPublishedCategoryBySlug(t *testing.T) {
	insertCategory(t, "slug-pub", true)
	insertCategory(t, "slug-hidden", false)

	category, err := PublishedCategoryBySlug("slug-pub")
	if err != nil {
		t.Fatalf("PublishedCategoryBySlug failed: %v", err)
	}
	if category.Slug != "slug-pub" {
		t.Errorf("got category %+v", category)
	}

	if _, err := PublishedCategoryBySlug("slug-hidden"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("unpublished category: got %v, want ErrCategoryNotFound", err)
	}
	if _, err := PublishedCategoryBySlug("no-such-slug"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("missing category: got %v, want ErrCategoryNotFound", err)
	}
}
