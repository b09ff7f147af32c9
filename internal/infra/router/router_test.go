package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/internal/testutil"
	"github.com/inkwell-cms/inkwell/pkg/config"
	article_handler "github.com/inkwell-cms/inkwell/pkg/handler/article"
	auth_handler "github.com/inkwell-cms/inkwell/pkg/handler/auth"
	comment_handler "github.com/inkwell-cms/inkwell/pkg/handler/comment"
	moderation_handler "github.com/inkwell-cms/inkwell/pkg/handler/moderation"
	user_handler "github.com/inkwell-cms/inkwell/pkg/handler/user"
	version_handler "github.com/inkwell-cms/inkwell/pkg/handler/version"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	article_service "github.com/inkwell-cms/inkwell/pkg/service/article"
	"github.com/inkwell-cms/inkwell/pkg/service/auth"
	comment_service "github.com/inkwell-cms/inkwell/pkg/service/comment"
	moderation_service "github.com/inkwell-cms/inkwell/pkg/service/moderation"
	"github.com/inkwell-cms/inkwell/pkg/service/user"
	"github.com/inkwell-cms/inkwell/pkg/service/utility"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine  *gin.Engine
	userSvc user.UserService
	encoder *idgen.Encoder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore(t)
	logger := testutil.DiscardLogger()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "conf.ini"))
	require.NoError(t, err)
	cfg.Set(config.KeyJWTSecret, "router-test-secret")

	encoder, err := idgen.New("router-test")
	require.NoError(t, err)

	repos := store.Repos
	userSvc := user.NewUserService(repos.User, store.Tx, logger)
	tokenSvc, err := auth.NewTokenService(repos.User, utility.NewMemoryCacheService(), encoder, cfg, logger)
	require.NoError(t, err)
	articleSvc := article_service.NewService(repos.Article, repos.User, store.Tx, logger)
	commentSvc := comment_service.NewService(repos.Comment, repos.Article, repos.User, store.Tx, logger)
	moderationSvc := moderation_service.NewService(repos.Moderation, repos.User, repos.Article, repos.Comment, logger)

	r := NewRouter(
		auth_handler.NewAuthHandler(auth.NewAuthService(userSvc, tokenSvc, logger), encoder),
		user_handler.NewUserHandler(userSvc, encoder),
		article_handler.NewHandler(articleSvc, commentSvc, encoder),
		comment_handler.NewHandler(commentSvc, encoder),
		moderation_handler.NewHandler(moderationSvc, encoder),
		version_handler.NewHandler(),
		middleware.NewMiddleware(tokenSvc, logger),
	)
	engine := gin.New()
	engine.Use(middleware.Metrics())
	r.Setup(engine)
	return &testServer{engine: engine, userSvc: userSvc, encoder: encoder}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)
	var data auth_handler.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func decodeID(t *testing.T, env envelope) string {
	t.Helper()
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ID)
	return data.ID
}

func TestModerationWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, err := s.userSvc.CreateAdministrator(context.Background(), "root@example.com", "rootpass", "root")
	require.NoError(t, err)
	admin := s.login(t, "root@example.com", "rootpass")

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ivan@example.com", "nickname": "ivan", "password": "secret1", "repeat_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	writer := s.login(t, "ivan@example.com", "secret1")

	// 文章提交后进入待审核状态，匿名访问者看不到
	code, env = s.do(t, http.MethodPost, "/api/articles", writer, gin.H{"title": "第一篇", "body": "**你好**", "visibility": "public"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	articleID := decodeID(t, env)

	code, _ = s.do(t, http.MethodGet, "/api/articles/"+articleID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/moderation/articles/"+articleID, writer, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, code, "作者不能审核")

	code, env = s.do(t, http.MethodPost, "/api/moderation/articles/"+articleID, admin, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/articles/"+articleID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var detail article_handler.ArticleResponse
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "accepted", detail.State)
	assert.Contains(t, detail.ContentHTML, "<strong>你好</strong>")
	require.NotNil(t, detail.CommentCount)
	assert.Zero(t, *detail.CommentCount)

	// 评论与拒绝记录
	code, env = s.do(t, http.MethodPost, "/api/articles/"+articleID+"/comments", writer, gin.H{"body": "沙发！"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	commentID := decodeID(t, env)

	code, _ = s.do(t, http.MethodPost, "/api/moderation/comments/"+commentID, admin, gin.H{"action": "refuse"})
	assert.Equal(t, http.StatusBadRequest, code, "拒绝必须填写理由")

	code, _ = s.do(t, http.MethodPost, "/api/moderation/comments/"+commentID, admin, gin.H{"action": "refuse", "description": "无意义内容"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/moderation/comments/"+commentID+"/history", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "comment_refusal", records[0]["action_type"])
	assert.Equal(t, commentID, records[0]["target_comment_id"])

	code, _ = s.do(t, http.MethodGet, "/api/moderation/stats", writer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// 注销后访问令牌失效
	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", writer, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/users/me", writer, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "缺少令牌")

	code, _ = s.do(t, http.MethodGet, "/api/articles", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "可选认证下无效令牌也返回 401")

	code, _ = s.do(t, http.MethodGet, "/api/articles", "", nil)
	assert.Equal(t, http.StatusOK, code, "匿名访问公开列表")

	code, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "not-an-email", "nickname": "judy", "password": "secret1", "repeat_password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, code, "注册时邮箱格式由 binding 校验")
	assert.Equal(t, "邮箱格式不正确或必填字段为空", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/articles/not-an-id", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "文章不存在", env.Message)
}

func TestModerationHistory_ChecksRoleBeforeFilters(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.userSvc.CreateAdministrator(ctx, "root@example.com", "rootpass", "root")
	require.NoError(t, err)
	_, err = s.userSvc.Register(ctx, "kate@example.com", "secret1", "kate")
	require.NoError(t, err)
	admin := s.login(t, "root@example.com", "rootpass")
	writer := s.login(t, "kate@example.com", "secret1")

	paths := []string{
		"/api/moderation/history?type=bogus",
		"/api/moderation/history?start=yesterday",
		"/api/moderation/history?limit=-1",
		"/api/moderation/recent?limit=abc",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			code, _ := s.do(t, http.MethodGet, path, writer, nil)
			assert.Equal(t, http.StatusForbidden, code, "普通作者先被角色拒绝")

			code, _ = s.do(t, http.MethodGet, path, admin, nil)
			assert.Equal(t, http.StatusBadRequest, code, "有权限时才校验参数")
		})
	}
}

func TestOpenReportsEndpoint(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.userSvc.CreateAdministrator(ctx, "root@example.com", "rootpass", "root")
	require.NoError(t, err)
	kate, err := s.userSvc.Register(ctx, "kate@example.com", "secret1", "kate")
	require.NoError(t, err)
	admin := s.login(t, "root@example.com", "rootpass")
	writer := s.login(t, "kate@example.com", "secret1")

	kateID, err := s.encoder.Encode(kate.ID, idgen.EntityTypeUser)
	require.NoError(t, err)
	code, _ := s.do(t, http.MethodPost, "/api/users/"+kateID+"/report", admin, map[string]string{"description": "刷屏"})
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodGet, "/api/moderation/reports/open", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 1)

	code, _ = s.do(t, http.MethodGet, "/api/moderation/reports/open", writer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodGet, "/api/moderation/reports/open", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestVersionAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "go_version")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inkwell_http_requests_total")
}
