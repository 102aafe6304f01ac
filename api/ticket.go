package api

import (
	"errors"
	"net/http"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/issuance"
	"github.com/Massamba505/Events-Api/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type buyTicketRequest struct {
	EventID    string        `json:"eventId" binding:"required"`
	TicketType db.TicketType `json:"ticketType" binding:"required"`
	Price      float64       `json:"price"`
}

// Purchase or RSVP a ticket. RSVP returns the finished ticket; paid types
// return a checkout session the client must complete.
func (server *Server) BuyTicket(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	var req buyTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/tickets/buy: failed to parse request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing or invalid purchase details"})
		return
	}

	result, err := server.engine.Purchase(ctx, issuance.PurchaseParams{
		EventRef:   req.EventID,
		UserID:     userID,
		TicketType: req.TicketType,
		Price:      req.Price,
	})
	if err != nil {
		if !db.IsValidation(err) && !errors.Is(err, db.ErrDuplicateRegistration) &&
			!errors.Is(err, db.ErrCapacityExceeded) && !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("POST /api/tickets/buy: failed to issue ticket",
				"user", userID.Hex(), "event", req.EventID, "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// Payment success redirect target. The session reference is the secret;
// confirming repeatedly is safe.
func (server *Server) ConfirmTicket(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	result, err := server.engine.Confirm(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) && !db.IsValidation(err) {
			util.LOGGER.Error("GET /api/tickets/success/:session_id: failed to confirm payment",
				"session", sessionID, "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Payment cancel redirect target: the pending ticket is discarded
func (server *Server) CancelCheckout(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	if err := server.engine.CancelPending(ctx, sessionID); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("GET /api/tickets/cancel/:session_id: failed to discard pending ticket",
				"session", sessionID, "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Checkout cancelled"})
}

// The requesting user's tickets with event details, newest first
func (server *Server) MyTickets(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	tickets, err := server.queries.ListUserTickets(ctx, userID)
	if err != nil {
		util.LOGGER.Error("GET /api/tickets/mytickets: failed to list tickets", "user", userID.Hex(), "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tickets)
}

func ticketIDParam(ctx *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param("ticketId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid ticket ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// Single ticket with event details, owner only
func (server *Server) GetTicket(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	ticketID, ok := ticketIDParam(ctx)
	if !ok {
		return
	}

	details, err := server.queries.GetTicketDetails(ctx, ticketID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("GET /api/tickets/:ticketId: failed to get ticket", "ticket", ticketID.Hex(), "error", err)
		}
		server.writeError(ctx, err)
		return
	}
	if details.UserID != userID {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
		return
	}

	ctx.JSON(http.StatusOK, details)
}

// Organizer scan: mark the ticket used, once
func (server *Server) AcceptTicket(ctx *gin.Context) {
	organizerID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	ticketID, ok := ticketIDParam(ctx)
	if !ok {
		return
	}

	ticket, err := server.engine.Accept(ctx, ticketID, organizerID, server.currentClaims(ctx).Role)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) && !errors.Is(err, db.ErrTicketAlreadyUsed) &&
			!errors.Is(err, issuance.ErrWrongOrganizer) {
			util.LOGGER.Error("POST /api/tickets/:ticketId/accept: failed to accept ticket",
				"ticket", ticketID.Hex(), "organizer", organizerID.Hex(), "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// Request a refund on a Paid ticket
func (server *Server) RefundTicket(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	ticketID, ok := ticketIDParam(ctx)
	if !ok {
		return
	}

	ticket, err := server.queries.GetTicket(ctx, ticketID)
	if err != nil {
		server.writeError(ctx, err)
		return
	}
	if ticket.UserID != userID {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
		return
	}

	if err := server.queries.RequestRefund(ctx, ticketID); err != nil {
		if !db.IsValidation(err) && !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("POST /api/tickets/:ticketId/refund: failed to request refund",
				"ticket", ticketID.Hex(), "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Refund requested"})
}

// Cancel a ticket without a refund
func (server *Server) CancelTicket(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	ticketID, ok := ticketIDParam(ctx)
	if !ok {
		return
	}

	ticket, err := server.queries.GetTicket(ctx, ticketID)
	if err != nil {
		server.writeError(ctx, err)
		return
	}
	if ticket.UserID != userID {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
		return
	}

	if err := server.queries.CancelTicket(ctx, ticketID); err != nil {
		util.LOGGER.Error("POST /api/tickets/:ticketId/cancel: failed to cancel ticket",
			"ticket", ticketID.Hex(), "error", err)
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Ticket cancelled"})
}
