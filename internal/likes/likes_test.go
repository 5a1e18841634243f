package likes

import (
	"context"
	"testing"
	"time"

	"gamestore/backend/internal/models"
	"gamestore/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	user    models.User
	other   models.User
	game    models.Game
	post    models.Post
	comment models.Comment
	review  models.Review
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)

	f := &fixture{db: db, svc: NewService(db)}
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	f.user = models.User{Nickname: "alice", Email: "alice@example.com", PasswordHash: "x"}
	f.other = models.User{Nickname: "bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.user).Error)
	require.NoError(t, db.Create(&f.other).Error)

	f.game = models.Game{DeveloperID: f.other.ID, Title: "Star Forge", PriceCents: 1999}
	require.NoError(t, db.Create(&f.game).Error)
	f.post = models.Post{AuthorID: f.other.ID, Title: "Patch notes", Body: "v1.1"}
	require.NoError(t, db.Create(&f.post).Error)
	f.comment = models.Comment{PostID: f.post.ID, AuthorID: f.other.ID, Body: "nice"}
	require.NoError(t, db.Create(&f.comment).Error)
	f.review = models.Review{GameID: f.game.ID, AuthorID: f.other.ID, Rating: 5, Body: "great"}
	require.NoError(t, db.Create(&f.review).Error)
	return f
}

func (f *fixture) targetID(kind Kind) uint {
	switch kind {
	case KindPost:
		return f.post.ID
	case KindComment:
		return f.comment.ID
	case KindReview:
		return f.review.ID
	default:
		return f.game.ID
	}
}

// assertInvariant checks that the stored counter matches the join rows.
func (f *fixture) assertInvariant(t *testing.T, kind Kind, targetID uint) int64 {
	t.Helper()
	d := descriptors[kind]

	var counter struct{ LikeCount int64 }
	require.NoError(t, f.db.Model(d.target()).Select("like_count").Where("id = ?", targetID).Take(&counter).Error)

	var rows int64
	require.NoError(t, f.db.Table(d.joinTable).Where(d.column+" = ?", targetID).Count(&rows).Error)

	assert.Equal(t, rows, counter.LikeCount, "%s %d counter out of sync", kind, targetID)
	return counter.LikeCount
}

func TestToggleLikeThenUnlikeGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Toggle(ctx, KindGame, int64(f.game.ID), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Liked: true, LikeCount: 1}, res)
	assert.Equal(t, int64(1), f.assertInvariant(t, KindGame, f.game.ID))

	var row models.GameLike
	require.NoError(t, f.db.Where("user_id = ? AND game_id = ?", f.user.ID, f.game.ID).First(&row).Error)
	assert.True(t, row.CreatedAt.Equal(f.svc.now()))

	res, err = f.svc.Toggle(ctx, KindGame, int64(f.game.ID), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Liked: false, LikeCount: 0}, res)
	assert.Equal(t, int64(0), f.assertInvariant(t, KindGame, f.game.ID))
}

func TestToggleEveryKindKeepsCounterInSync(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := f.targetID(kind)

			steps := []struct {
				user  uint
				liked bool
				count int64
			}{
				{f.user.ID, true, 1},
				{f.other.ID, true, 2},
				{f.user.ID, false, 1},
				{f.user.ID, true, 2},
				{f.other.ID, false, 1},
			}
			for i, step := range steps {
				res, err := f.svc.Toggle(ctx, kind, int64(id), step.user)
				require.NoError(t, err, "step %d", i)
				assert.Equal(t, step.liked, res.Liked, "step %d", i)
				assert.Equal(t, step.count, res.LikeCount, "step %d", i)
				assert.Equal(t, step.count, f.assertInvariant(t, kind, id), "step %d", i)
			}
		})
	}
}

func TestDoubleToggleRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Toggle(ctx, KindPost, int64(f.post.ID), f.other.ID)
	require.NoError(t, err)
	before := f.assertInvariant(t, KindPost, f.post.ID)
	likedBefore, err := f.svc.IsLiked(ctx, KindPost, f.post.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Toggle(ctx, KindPost, int64(f.post.ID), f.user.ID)
	require.NoError(t, err)
	res, err := f.svc.Toggle(ctx, KindPost, int64(f.post.ID), f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, likedBefore, res.Liked)
	assert.Equal(t, before, res.LikeCount)
	assert.Equal(t, before, f.assertInvariant(t, KindPost, f.post.ID))
}

func TestToggleRejectsNonPositiveTarget(t *testing.T) {
	f := newFixture(t)

	for _, id := range []int64{0, -1, -42} {
		_, err := f.svc.Toggle(context.Background(), KindGame, id, f.user.ID)
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeInvalidArgument), "id %d", id)
	}

	var rows int64
	require.NoError(t, f.db.Model(&models.GameLike{}).Count(&rows).Error)
	assert.Zero(t, rows)
	assert.Zero(t, f.assertInvariant(t, KindGame, f.game.ID))
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Toggle(context.Background(), Kind("lobby"), 1, f.user.ID)
	assert.True(t, models.IsCode(err, models.CodeInvalidArgument))
}

func TestToggleMissingTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Toggle(context.Background(), KindComment, 9999, f.user.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestToggleSoftDeletedTargetIsNotFound(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Delete(&models.Post{}, f.post.ID).Error)

	_, err := f.svc.Toggle(context.Background(), KindPost, int64(f.post.ID), f.user.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestToggleUnauthenticatedMutatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Toggle(context.Background(), KindGame, int64(f.game.ID), Anonymous)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))

	var rows int64
	require.NoError(t, f.db.Model(&models.GameLike{}).Count(&rows).Error)
	assert.Zero(t, rows)
	assert.Zero(t, f.assertInvariant(t, KindGame, f.game.ID))
}

func TestToggleChecksTargetBeforeAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Toggle(context.Background(), KindGame, 9999, Anonymous)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestToggleDeletedUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Delete(&models.User{}, f.user.ID).Error)

	_, err := f.svc.Toggle(context.Background(), KindGame, int64(f.game.ID), f.user.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Contains(t, err.Error(), "User")
	assert.Zero(t, f.assertInvariant(t, KindGame, f.game.ID))
}

func TestToggleNotifiesListenersAfterCommit(t *testing.T) {
	f := newFixture(t)

	var got []Result
	f.svc.OnToggle(func(kind Kind, targetID uint, result Result) {
		assert.Equal(t, KindGame, kind)
		assert.Equal(t, f.game.ID, targetID)
		got = append(got, result)
	})

	_, err := f.svc.Toggle(context.Background(), KindGame, int64(f.game.ID), f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Toggle(context.Background(), KindGame, int64(f.game.ID), Anonymous)
	require.Error(t, err)

	assert.Equal(t, []Result{{Liked: true, LikeCount: 1}}, got)
}

func TestLikedIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := models.Game{DeveloperID: f.other.ID, Title: "Moon Miner"}
	require.NoError(t, f.db.Create(&second).Error)
	_, err := f.svc.Toggle(ctx, KindGame, int64(second.ID), f.user.ID)
	require.NoError(t, err)

	liked, err := f.svc.LikedIDs(ctx, KindGame, f.user.ID, []uint{f.game.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{second.ID: true}, liked)

	liked, err = f.svc.LikedIDs(ctx, KindGame, Anonymous, []uint{second.ID})
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("reviews")
	assert.True(t, ok)
	assert.Equal(t, KindReview, kind)

	_, ok = ParseKind("lobbies")
	assert.False(t, ok)
}
