package channel

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streamgrid/streamgrid/internal/domain"
	domainuser "github.com/streamgrid/streamgrid/internal/domain/user"
	domainvideo "github.com/streamgrid/streamgrid/internal/domain/video"
	videosvc "github.com/streamgrid/streamgrid/internal/service/api/video"
)

type stubUserRepo struct {
	domainuser.Repo
	byID map[uuid.UUID]*domainuser.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domainuser.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (*domainuser.User, error) {
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type pair struct{ sub, ch uuid.UUID }

type fakeSubs struct {
	set map[pair]bool
}

func newFakeSubs() *fakeSubs { return &fakeSubs{set: map[pair]bool{}} }

func (f *fakeSubs) Subscribe(_ context.Context, sub, ch uuid.UUID) error {
	f.set[pair{sub, ch}] = true
	return nil
}

func (f *fakeSubs) Unsubscribe(_ context.Context, sub, ch uuid.UUID) error {
	delete(f.set, pair{sub, ch})
	return nil
}

func (f *fakeSubs) IsSubscribed(_ context.Context, sub, ch uuid.UUID) (bool, error) {
	return f.set[pair{sub, ch}], nil
}

func (f *fakeSubs) Counts(_ context.Context, ch uuid.UUID) (int64, int64, error) {
	var subscribers, subscribedTo int64
	for p := range f.set {
		if p.ch == ch {
			subscribers++
		}
		if p.sub == ch {
			subscribedTo++
		}
	}
	return subscribers, subscribedTo, nil
}

type stubVideoRepo struct {
	domainvideo.Repo
	byOwner map[uuid.UUID][]domainvideo.Video
}

func (s *stubVideoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, _ int) ([]domainvideo.Video, error) {
	return s.byOwner[ownerID], nil
}

type noStore struct{}

func (noStore) PresignPut(_ context.Context, key string) (string, error) { return key, nil }
func (noStore) ObjectURL(key string) string                              { return "https://media.test/" + key }

func newTestUsecase() (*Usecase, *stubUserRepo, *fakeSubs, *stubVideoRepo) {
	users := &stubUserRepo{byID: map[uuid.UUID]*domainuser.User{}}
	subs := newFakeSubs()
	vrepo := &stubVideoRepo{byOwner: map[uuid.UUID][]domainvideo.Video{}}
	videos := videosvc.NewUsecase(vrepo, nil, noStore{}, func() time.Time { return time.Now() })
	return NewUsecase(users, subs, videos), users, subs, vrepo
}

func addUser(users *stubUserRepo, username string) uuid.UUID {
	id := uuid.New()
	users.byID[id] = &domainuser.User{ID: id, Username: username, Email: username + "@example.com"}
	return id
}

func TestSubscribeRules(t *testing.T) {
	uc, users, subs, _ := newTestUsecase()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	err := uc.Subscribe(ctx, alice, alice)
	require.ErrorIs(t, err, domain.ErrValidation)

	err = uc.Subscribe(ctx, alice, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.Subscribe(ctx, alice, bob))
	// idempotent
	require.NoError(t, uc.Subscribe(ctx, alice, bob))
	require.Len(t, subs.set, 1)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	uc, users, _, _ := newTestUsecase()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	require.NoError(t, uc.Subscribe(ctx, alice, bob))
	require.NoError(t, uc.Unsubscribe(ctx, alice, bob))
	require.NoError(t, uc.Unsubscribe(ctx, alice, bob))
}

func TestProfileAggregation(t *testing.T) {
	uc, users, _, vrepo := newTestUsecase()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")
	carol := addUser(users, "carol")

	require.NoError(t, uc.Subscribe(ctx, alice, bob))
	require.NoError(t, uc.Subscribe(ctx, carol, bob))
	require.NoError(t, uc.Subscribe(ctx, bob, alice))
	vrepo.byOwner[bob] = []domainvideo.Video{{ID: uuid.New(), OwnerID: bob, Title: "clip", FileKey: "videos/x"}}

	page, err := uc.Profile(ctx, "bob", &alice)
	require.NoError(t, err)
	require.Equal(t, "bob", page.User.Username)
	require.EqualValues(t, 2, page.Subscribers)
	require.EqualValues(t, 1, page.SubscribedTo)
	require.True(t, page.IsSubscribed)
	require.Len(t, page.Videos, 1)
	require.Equal(t, "https://media.test/videos/x", page.Videos[0].FileURL)

	// anonymous viewer
	page, err = uc.Profile(ctx, "bob", nil)
	require.NoError(t, err)
	require.False(t, page.IsSubscribed)

	// a channel never "subscribes to itself" on its own page
	page, err = uc.Profile(ctx, "bob", &bob)
	require.NoError(t, err)
	require.False(t, page.IsSubscribed)

	_, err = uc.Profile(ctx, "nobody", nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
