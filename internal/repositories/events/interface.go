package events

import (
	"context"
)

// Publisher broadcasts committed round state changes
type Publisher interface {
	// Publish sends one event to every subscriber of the show
	Publish(ctx context.Context, input *PublishInput) error
}

// Subscriber receives the events of one show
type Subscriber interface {
	// Subscribe starts delivering events until the returned subscription is closed
	Subscribe(ctx context.Context, input *SubscribeInput) (*Subscription, error)
}
