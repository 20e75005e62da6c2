// Package listeners turns domain events into queued notifications.
package listeners

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/krishi/app/jobs"
	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/collection"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/queue"
)

// Dispatcher queues a job. *queue.Manager satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// Register subscribes the notification listeners to bus.
func Register(bus *event.Bus, q Dispatcher) {
	bus.Listen(event.UserRegistered, func(ctx context.Context, payload any) {
		u, ok := payload.(*models.User)
		if !ok {
			return
		}
		body := "Welcome to Krishi."
		if !u.Status.CanList() {
			body = "Your farmer account is awaiting verification."
		}
		dispatch(ctx, q, &jobs.Notification{
			Topic: event.UserRegistered, Recipients: []uint{u.ID}, Subject: "Account created", Body: body,
		})
	})

	bus.Listen(event.FarmerStatusChanged, func(ctx context.Context, payload any) {
		c, ok := payload.(services.StatusChange)
		if !ok {
			return
		}
		dispatch(ctx, q, &jobs.Notification{
			Topic:      event.FarmerStatusChanged,
			Recipients: []uint{c.OwnerID},
			Subject:    "Account " + c.To,
			Body:       withNotes(fmt.Sprintf("Your account moved from %s to %s.", c.From, c.To), c.Notes),
		})
	})

	bus.Listen(event.ListingModerated, func(ctx context.Context, payload any) {
		c, ok := payload.(services.StatusChange)
		if !ok {
			return
		}
		dispatch(ctx, q, &jobs.Notification{
			Topic:      event.ListingModerated,
			Recipients: []uint{c.OwnerID},
			Subject:    fmt.Sprintf("Your %s #%d is %s", c.Entity, c.EntityID, c.To),
			Body:       withNotes("", c.Notes),
		})
	})

	bus.Listen(event.OrderPlaced, func(ctx context.Context, payload any) {
		o, ok := payload.(services.OrderEvent)
		if !ok || len(o.FarmerIDs) == 0 {
			return
		}
		dispatch(ctx, q, &jobs.Notification{
			Topic:      event.OrderPlaced,
			Recipients: o.FarmerIDs,
			Subject:    "New order " + o.Number,
			Body:       "An order containing your products is waiting for confirmation.",
		})
	})

	bus.Listen(event.OrderStatusChanged, func(ctx context.Context, payload any) {
		o, ok := payload.(services.OrderEvent)
		if !ok {
			return
		}
		recipients := collection.Reject(append([]uint{o.CustomerID}, o.FarmerIDs...),
			func(id uint) bool { return id == o.ActorID })
		if len(recipients) == 0 {
			return
		}
		dispatch(ctx, q, &jobs.Notification{
			Topic:      event.OrderStatusChanged,
			Recipients: recipients,
			Subject:    fmt.Sprintf("Order %s: %s", o.Number, o.To.Label()),
			Body:       fmt.Sprintf("Status changed from %s to %s.", o.From.Label(), o.To.Label()),
		})
	})
}

func dispatch(ctx context.Context, q Dispatcher, n *jobs.Notification) {
	if err := q.Dispatch(ctx, n); err != nil {
		logger.WithCtx(ctx).Error("listeners: dispatch failed", "topic", n.Topic, "error", err)
	}
}

func withNotes(body, notes string) string {
	if notes == "" {
		return body
	}
	if body == "" {
		return "Notes: " + notes
	}
	return body + " Notes: " + notes
}
