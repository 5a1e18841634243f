package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"gamestore/backend/internal/config"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/likes"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/payment"
	"gamestore/backend/internal/recommend"
	"gamestore/backend/internal/testutil"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	likes  *likes.Service
}

func newTestEnv(t *testing.T, processor payment.Processor) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevCfg, prevDB := config.AppConfig, database.DB
	config.AppConfig = &config.Config{JWTSecret: "handler-test-secret", RecommendCategoryLimit: 20}
	db := testutil.OpenDB(t)
	database.DB = db
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		database.DB = prevDB
	})

	likeService := likes.NewService(db)
	likeService.OnToggle(func(kind likes.Kind, targetID uint, result likes.Result) {
		if kind == likes.KindGame {
			PublishGameLikeCount(targetID, result.LikeCount)
		}
	})

	router := gin.New()
	RegisterRoutes(router, Services{
		Likes:         likeService,
		Recommend:     recommend.NewService(db, nil),
		Payments:      processor,
		CategoryLimit: 20,
	})
	return &testEnv{t: t, db: db, router: router, likes: likeService}
}

func (e *testEnv) user(nickname, role string) (models.User, string) {
	e.t.Helper()
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{Nickname: nickname, Email: nickname + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(e.t, e.db.Create(&user).Error)
	token, err := jwt.GenerateToken(user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) tag(name string) models.Tag {
	e.t.Helper()
	tag := models.Tag{Name: name}
	require.NoError(e.t, e.db.Create(&tag).Error)
	return tag
}

func (e *testEnv) game(developer models.User, title string, price int64, discount *int64, tags ...models.Tag) models.Game {
	e.t.Helper()
	game := models.Game{DeveloperID: developer.ID, Title: title, PriceCents: price, DiscountPriceCents: discount}
	for i := range tags {
		game.Tags = append(game.Tags, &tags[i])
	}
	require.NoError(e.t, e.db.Create(&game).Error)
	return game
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func int64Ptr(v int64) *int64 { return &v }

func path(format string, args ...interface{}) string {
	return "/api/v1" + fmt.Sprintf(format, args...)
}
