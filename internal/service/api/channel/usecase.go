// Package channel serves the social graph: subscriptions and the public
// channel page with its counters.
package channel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain"
	domainchannel "github.com/streamgrid/streamgrid/internal/domain/channel"
	"github.com/streamgrid/streamgrid/internal/domain/user"
	videosvc "github.com/streamgrid/streamgrid/internal/service/api/video"
)

const channelVideosLimit = 24

type Usecase struct {
	users  user.Repo
	subs   domainchannel.SubscriptionRepo
	videos *videosvc.Usecase
}

func NewUsecase(users user.Repo, subs domainchannel.SubscriptionRepo, videos *videosvc.Usecase) *Usecase {
	return &Usecase{users: users, subs: subs, videos: videos}
}

func (u *Usecase) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	if subscriberID == channelID {
		return fmt.Errorf("%w: cannot subscribe to yourself", domain.ErrValidation)
	}
	if _, err := u.users.GetByID(ctx, channelID); err != nil {
		return err
	}
	return u.subs.Subscribe(ctx, subscriberID, channelID)
}

// Unsubscribe is a no-op when no subscription exists.
func (u *Usecase) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	return u.subs.Unsubscribe(ctx, subscriberID, channelID)
}

// Page is the channel profile plus its latest uploads.
type Page struct {
	domainchannel.Profile
	Videos []videosvc.Published `json:"videos"`
}

// Profile aggregates the channel page for a viewer. viewerID is nil for
// anonymous requests, which fixes IsSubscribed to false.
func (u *Usecase) Profile(ctx context.Context, username string, viewerID *uuid.UUID) (*Page, error) {
	ch, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	subscribers, subscribedTo, err := u.subs.Counts(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	page := &Page{Profile: domainchannel.Profile{
		User:         ch.Public(),
		Subscribers:  subscribers,
		SubscribedTo: subscribedTo,
	}}
	if viewerID != nil && *viewerID != ch.ID {
		page.IsSubscribed, err = u.subs.IsSubscribed(ctx, *viewerID, ch.ID)
		if err != nil {
			return nil, err
		}
	}
	page.Videos, err = u.videos.ListByOwner(ctx, ch.ID, channelVideosLimit)
	if err != nil {
		return nil, err
	}
	return page, nil
}
