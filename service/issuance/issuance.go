// Package issuance runs the ticket state machine: purchase/RSVP intake,
// payment confirmation and organizer-side redemption.
//
// A ticket is born Pending (paid path) or Paid (RSVP path), moves to Paid on
// external confirmation and carries its QR proof from then on. Paid may move
// to Cancelled, and refunds are only requested from Paid.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/payment"
	"github.com/Massamba505/Events-Api/util"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrWrongOrganizer rejects a scan by anyone but the event's organizer.
var ErrWrongOrganizer = errors.New("only the event organizer can scan tickets")

// Every Stripe round-trip is bounded: a timeout during purchase persists
// nothing, a timeout during confirmation leaves the ticket Pending for a
// later retry.
const paymentTimeout = 15 * time.Second

// Engine coordinates the repositories and the payment collaborator.
type Engine struct {
	queries *db.Queries
	baseURL string
}

func NewEngine(queries *db.Queries, baseURL string) *Engine {
	return &Engine{queries: queries, baseURL: baseURL}
}

// PurchaseParams is one purchase/RSVP request.
type PurchaseParams struct {
	EventRef   string // human-facing event_id or internal id
	UserID     primitive.ObjectID
	TicketType db.TicketType
	Price      float64
}

// PurchaseResult is either a finished RSVP ticket or a checkout session
// handle the client must complete.
type PurchaseResult struct {
	Ticket      *db.TicketDetails `json:"ticket,omitempty"`
	SessionID   string            `json:"sessionId,omitempty"`
	RedirectURL string            `json:"url,omitempty"`
}

// Purchase turns a request into a Paid RSVP ticket or a Pending paid ticket
// tied to a checkout session.
func (engine *Engine) Purchase(ctx context.Context, params PurchaseParams) (*PurchaseResult, error) {
	if !db.ValidTicketType(params.TicketType) {
		return nil, db.NewValidationError("Invalid or missing ticketType")
	}

	event, err := engine.queries.FindEvent(ctx, params.EventRef)
	if err != nil {
		return nil, err
	}

	// Fast-fail checks; registerAttendee re-checks both atomically
	if db.IsAttendee(event, params.UserID) {
		return nil, db.ErrDuplicateRegistration
	}
	if event.MaxAttendees != nil && event.CurrentAttendees+1 > *event.MaxAttendees {
		return nil, db.ErrCapacityExceeded
	}

	if params.TicketType == db.RSVP {
		return engine.rsvp(ctx, event, params.UserID)
	}

	if params.Price <= 0 {
		return nil, db.NewValidationError("Invalid or missing price for paid tickets")
	}
	return engine.openCheckout(ctx, event, params)
}

// rsvp issues a free ticket: the attendee is registered through the atomic
// conditional update first, so a losing racer never leaves a stray ticket.
func (engine *Engine) rsvp(ctx context.Context, event *db.Event, userID primitive.ObjectID) (*PurchaseResult, error) {
	if err := engine.queries.RegisterAttendee(ctx, event.ID, userID); err != nil {
		return nil, err
	}

	ticket, err := engine.queries.CreateTicket(ctx, &db.Ticket{
		EventID:       event.ID,
		UserID:        userID,
		TicketType:    db.RSVP,
		Price:         0,
		PaymentStatus: db.PaymentPaid,
		EventDate:     event.Date,
	})
	if err != nil {
		return nil, err
	}

	qr, err := util.GenerateQR(qrPayload(ticket.ID, event.ID))
	if err != nil {
		return nil, err
	}
	if err := engine.queries.AttachQR(ctx, ticket.ID, qr); err != nil {
		return nil, err
	}
	ticket.QRCode = qr

	return &PurchaseResult{Ticket: &db.TicketDetails{Ticket: *ticket, Event: event}}, nil
}

// openCheckout opens the Stripe session and persists the Pending ticket.
// Session creation failing means nothing is persisted: all-or-nothing for
// the paid path.
func (engine *Engine) openCheckout(ctx context.Context, event *db.Event, params PurchaseParams) (*PurchaseResult, error) {
	payCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	image := ""
	if len(event.Images) > 0 {
		image = event.Images[0]
	}

	session, err := payment.CreateCheckoutSession(
		payCtx,
		event.Title,
		image,
		util.MinorUnits(params.Price),
		engine.baseURL+"/api/tickets/success/{CHECKOUT_SESSION_ID}",
		engine.baseURL+"/api/tickets/cancel/{CHECKOUT_SESSION_ID}",
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	_, err = engine.queries.CreateTicket(ctx, &db.Ticket{
		EventID:       event.ID,
		UserID:        params.UserID,
		TicketType:    params.TicketType,
		Price:         params.Price,
		SessionID:     session.ID,
		PaymentStatus: db.PaymentPending,
		EventDate:     event.Date,
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseResult{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// ConfirmResult carries the settled ticket, plus a warning when payment
// succeeded but the event filled up in the meantime.
type ConfirmResult struct {
	Ticket  *db.TicketDetails `json:"ticket"`
	Warning string            `json:"warning,omitempty"`
}

// Confirm reconciles an external session status with its Pending ticket.
// Confirming the same session any number of times yields exactly one Paid
// ticket, one QR and one attendee registration.
func (engine *Engine) Confirm(ctx context.Context, sessionRef string) (*ConfirmResult, error) {
	payCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	session, err := payment.GetSession(payCtx, sessionRef)
	if err != nil {
		// Unknown session: fall back to treating the reference as a ticket
		// id, which serves the RSVP/already-settled path.
		return engine.confirmFallback(ctx, sessionRef)
	}
	if !payment.SessionPaid(session) {
		return nil, db.NewValidationError("Payment has not been completed for this session")
	}

	ticket, _, err := engine.queries.MarkTicketPaid(ctx, sessionRef)
	if err != nil {
		return nil, err
	}

	warning, err := engine.finalize(ctx, ticket)
	if err != nil {
		return nil, err
	}

	details, err := engine.queries.GetTicketDetails(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Ticket: details, Warning: warning}, nil
}

// finalize runs the post-settlement steps of a Paid ticket. Both steps are
// unconditional and idempotent: the QR is attached whenever it is missing
// and registration is attempted on every confirmation, so a confirmation
// that failed halfway is repaired by the next retry instead of leaving the
// ticket Paid without its QR or its attendance.
func (engine *Engine) finalize(ctx context.Context, ticket *db.Ticket) (string, error) {
	if ticket.QRCode == "" {
		qr, err := util.GenerateQR(qrPayload(ticket.ID, ticket.EventID))
		if err != nil {
			return "", err
		}
		if err := engine.queries.AttachQR(ctx, ticket.ID, qr); err != nil {
			return "", err
		}
		ticket.QRCode = qr
	}

	switch err := engine.queries.RegisterAttendee(ctx, ticket.EventID, ticket.UserID); {
	case err == nil, errors.Is(err, db.ErrDuplicateRegistration):
		// registered now, or already was
		return "", nil
	case errors.Is(err, db.ErrCapacityExceeded):
		// Payment already happened; the ticket stays Paid and the
		// shortfall is surfaced, not reverted.
		util.LOGGER.Warn("Event filled up before payment confirmation",
			"ticket", ticket.ID.Hex(), "event", ticket.EventID.Hex())
		return "Payment received, but the event has reached capacity", nil
	default:
		return "", err
	}
}

func (engine *Engine) confirmFallback(ctx context.Context, sessionRef string) (*ConfirmResult, error) {
	ticketID, err := primitive.ObjectIDFromHex(sessionRef)
	if err != nil {
		return nil, db.ErrNotFound
	}

	details, err := engine.queries.GetTicketDetails(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Ticket: details}, nil
}

// CancelPending abandons an unfinished checkout: the Pending ticket is
// deleted, nothing was charged.
func (engine *Engine) CancelPending(ctx context.Context, sessionRef string) error {
	return engine.queries.DeletePendingTicket(ctx, sessionRef)
}

// Accept marks a ticket used after verifying the scanner owns the event.
// Admins may scan for any event. The used timestamp is set exactly once.
func (engine *Engine) Accept(ctx context.Context, ticketID, scannerID primitive.ObjectID, scannerRole db.Role) (*db.Ticket, error) {
	ticket, err := engine.queries.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	event, err := engine.queries.GetEventByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if scannerRole != db.Admin && event.UserID != scannerID {
		return nil, ErrWrongOrganizer
	}

	return engine.queries.MarkTicketUsed(ctx, ticketID)
}

func qrPayload(ticketID, eventID primitive.ObjectID) string {
	return fmt.Sprintf("Ticket ID: %s, Event ID: %s", ticketID.Hex(), eventID.Hex())
}
