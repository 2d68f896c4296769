package controller_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techpals/models"
)

func TestCreatePostDerivesSlugAndExcerpt(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	content := strings.Repeat("x", 400)
	resp := doJSON(t, app, "POST", "/blog", tokenFor(t, user), map[string]string{
		"title":   "My First Post",
		"content": content,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "my-first-post", post.Slug)
	assert.Equal(t, content[:150], post.Excerpt)
	assert.Equal(t, user.ID, post.AuthorID)
}

func TestCreatePostDuplicateTitleGetsSuffixedSlug(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, "POST", "/blog", tokenFor(t, user), map[string]string{
			"title":   "Same Title",
			"content": "body",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var slugs []string
	require.NoError(t, db.Model(&models.Post{}).Order("id asc").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"same-title", "same-title-2"}, slugs)
}

func TestCreatePostExplicitDuplicateSlugRejected(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	payload := map[string]string{"title": "Post", "slug": "fixed-slug", "content": "body"}

	resp := doJSON(t, app, "POST", "/blog", tokenFor(t, user), payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/blog", tokenFor(t, user), payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreatePostKeepsProvidedExcerpt(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	resp := doJSON(t, app, "POST", "/blog", tokenFor(t, user), map[string]string{
		"title":   "Post",
		"content": strings.Repeat("y", 300),
		"excerpt": "hand-written summary",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "hand-written summary", post.Excerpt)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, "POST", "/blog", "", map[string]string{
		"title":   "Post",
		"content": "body",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListPostsPublicPaginated(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	for i := 1; i <= 7; i++ {
		require.NoError(t, db.Create(&models.Post{
			Title:    fmt.Sprintf("Post %d", i),
			Slug:     fmt.Sprintf("post-%d", i),
			AuthorID: user.ID,
			Content:  "body",
		}).Error)
	}

	// No token: the listing is public.
	resp := doJSON(t, app, "GET", "/blog", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["posts"], 5)
	assert.Equal(t, float64(7), data["total"])

	resp = doJSON(t, app, "GET", "/blog?page=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	data = body["data"].(map[string]interface{})
	assert.Len(t, data["posts"], 2)
	assert.Equal(t, float64(2), data["page"])
}

func TestGetPostBySlug(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)
	require.NoError(t, db.Create(&models.Post{
		Title:    "Hello",
		Slug:     "hello",
		AuthorID: user.ID,
		Content:  "body",
	}).Error)

	resp := doJSON(t, app, "GET", "/blog/hello", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Hello", data["title"])

	resp = doJSON(t, app, "GET", "/blog/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPostsByCategory(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "alice", models.RoleRegular)

	category := &models.Category{Name: "Guides", Slug: "guides"}
	require.NoError(t, db.Create(category).Error)

	require.NoError(t, db.Create(&models.Post{
		Title: "In category", Slug: "in-category", AuthorID: user.ID,
		CategoryID: &category.ID, Content: "body",
	}).Error)
	require.NoError(t, db.Create(&models.Post{
		Title: "Uncategorized", Slug: "uncategorized", AuthorID: user.ID, Content: "body",
	}).Error)

	resp := doJSON(t, app, "GET", "/blog/category/guides", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	posts := data["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "In category", posts[0].(map[string]interface{})["title"])
}

func TestCreateCategoryAdminOnly(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	alice := createUser(t, db, "alice", models.RoleRegular)

	resp := doJSON(t, app, "POST", "/blog/categories", tokenFor(t, alice), map[string]string{
		"name": "Guides",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/blog/categories", tokenFor(t, admin), map[string]string{
		"name": "Guides",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var category models.Category
	require.NoError(t, db.First(&category).Error)
	assert.Equal(t, "guides", category.Slug)
}
