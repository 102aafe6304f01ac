package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateTicket persists a new ticket, assigning its internal id and
// human-facing serial number.
func (queries *Queries) CreateTicket(ctx context.Context, ticket *Ticket) (*Ticket, error) {
	ticket.ID = primitive.NewObjectID()
	ticket.TicketNumber = uuid.NewString()
	ticket.CreatedAt = time.Now()
	if ticket.RefundStatus == "" {
		ticket.RefundStatus = RefundNotRequested
	}

	if _, err := queries.DB.Collection("tickets").InsertOne(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetTicket fetches a ticket by its internal id.
func (queries *Queries) GetTicket(ctx context.Context, id primitive.ObjectID) (*Ticket, error) {
	var ticket Ticket
	if err := queries.DB.Collection("tickets").FindOne(ctx, bson.M{"_id": id}).Decode(&ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// GetTicketDetails returns a ticket joined with its event.
func (queries *Queries) GetTicketDetails(ctx context.Context, id primitive.ObjectID) (*TicketDetails, error) {
	ticket, err := queries.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &TicketDetails{Ticket: *ticket}
	if event, err := queries.GetEventByID(ctx, ticket.EventID); err == nil {
		details.Event = event
	}
	return details, nil
}

// FindTicketBySession resolves a ticket by its payment session reference.
func (queries *Queries) FindTicketBySession(ctx context.Context, sessionID string) (*Ticket, error) {
	var ticket Ticket
	err := queries.DB.Collection("tickets").FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// MarkTicketPaid transitions the Pending ticket for sessionID to Paid. The
// returned flag reports whether this caller won the transition; a concurrent
// or repeated confirmation finds the ticket already Paid and gets won=false.
// Either way the settlement happens exactly once.
func (queries *Queries) MarkTicketPaid(ctx context.Context, sessionID string) (*Ticket, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ticket Ticket
	err := queries.DB.Collection("tickets").FindOneAndUpdate(
		ctx,
		bson.M{"session_id": sessionID, "payment_status": PaymentPending},
		bson.M{"$set": bson.M{"payment_status": PaymentPaid}},
		opts,
	).Decode(&ticket)
	if err == nil {
		return &ticket, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	// No Pending ticket: either already Paid (idempotent re-confirm) or gone
	existing, err := queries.FindTicketBySession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// AttachQR stores the QR proof on a ticket.
func (queries *Queries) AttachQR(ctx context.Context, ticketID primitive.ObjectID, qr string) error {
	res, err := queries.DB.Collection("tickets").UpdateOne(
		ctx,
		bson.M{"_id": ticketID},
		bson.M{"$set": bson.M{"qr_code": qr}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTicketUsed stamps the scan timestamp exactly once: the conditional
// filter only matches an unused ticket, so a second scan always fails.
func (queries *Queries) MarkTicketUsed(ctx context.Context, ticketID primitive.ObjectID) (*Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ticket Ticket
	err := queries.DB.Collection("tickets").FindOneAndUpdate(
		ctx,
		bson.M{"_id": ticketID, "used": nil},
		bson.M{"$set": bson.M{"used": time.Now()}},
		opts,
	).Decode(&ticket)
	if err == nil {
		return &ticket, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, err := queries.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return nil, ErrTicketAlreadyUsed
}

// RequestRefund moves a Paid ticket's refund status to Requested. Refunds are
// only valid from Paid tickets.
func (queries *Queries) RequestRefund(ctx context.Context, ticketID primitive.ObjectID) error {
	res, err := queries.DB.Collection("tickets").UpdateOne(
		ctx,
		bson.M{"_id": ticketID, "payment_status": PaymentPaid},
		bson.M{"$set": bson.M{"refund_status": RefundRequested}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := queries.GetTicket(ctx, ticketID); err != nil {
			return err
		}
		return NewValidationError("Refund can only be requested for paid tickets")
	}
	return nil
}

// CancelTicket marks a ticket Cancelled. No refund logic here.
func (queries *Queries) CancelTicket(ctx context.Context, ticketID primitive.ObjectID) error {
	res, err := queries.DB.Collection("tickets").UpdateOne(
		ctx,
		bson.M{"_id": ticketID},
		bson.M{"$set": bson.M{"payment_status": PaymentCancelled}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePendingTicket removes the Pending ticket tied to an abandoned payment
// session. Nothing was charged, so nothing survives.
func (queries *Queries) DeletePendingTicket(ctx context.Context, sessionID string) error {
	res, err := queries.DB.Collection("tickets").DeleteOne(
		ctx,
		bson.M{"session_id": sessionID, "payment_status": PaymentPending},
	)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserTickets returns the user's tickets newest-first, each joined with
// its event.
func (queries *Queries) ListUserTickets(ctx context.Context, userID primitive.ObjectID) ([]TicketDetails, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := queries.DB.Collection("tickets").Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tickets []Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, err
	}

	details := make([]TicketDetails, 0, len(tickets))
	for _, ticket := range tickets {
		item := TicketDetails{Ticket: ticket}
		if event, err := queries.GetEventByID(ctx, ticket.EventID); err == nil {
			item.Event = event
		}
		details = append(details, item)
	}
	return details, nil
}
