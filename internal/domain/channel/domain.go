package channel

import "github.com/streamgrid/streamgrid/internal/domain/user"

// Profile is the aggregated channel view: public identity plus the
// social-graph counters, and whether the viewer follows the channel.
type Profile struct {
	User         user.Public `json:"user"`
	Subscribers  int64       `json:"subscribers"`
	SubscribedTo int64       `json:"subscribedTo"`
	IsSubscribed bool        `json:"isSubscribed"`
}
