package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/notify"
	"github.com/Massamba505/Events-Api/service/schedule"
	"github.com/Massamba505/Events-Api/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List all approved, non-cancelled events, preference-ranked when the
// request carries a valid token
func (server *Server) ListEvents(ctx *gin.Context) {
	events, err := server.catalog.ListAll(ctx, server.optionalViewer(ctx))
	if err != nil {
		util.LOGGER.Error("GET /api/events: failed to list events", "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

func (server *Server) ListUpcomingEvents(ctx *gin.Context) {
	server.listBucket(ctx, schedule.Upcoming)
}

func (server *Server) ListInProgressEvents(ctx *gin.Context) {
	server.listBucket(ctx, schedule.InProgress)
}

func (server *Server) ListPastEvents(ctx *gin.Context) {
	server.listBucket(ctx, schedule.Past)
}

func (server *Server) listBucket(ctx *gin.Context, bucket schedule.Bucket) {
	events, err := server.catalog.ListBucket(ctx, bucket, server.optionalViewer(ctx))
	if err != nil {
		util.LOGGER.Error("GET /api/events: failed to list bucketed events", "bucket", bucket, "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Top events by current attendance
func (server *Server) ListPopularEvents(ctx *gin.Context) {
	events, err := server.catalog.Popular(ctx)
	if err != nil {
		util.LOGGER.Error("GET /api/events/popular: failed to list popular events", "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Soonest upcoming events matching the requester's preferred categories
func (server *Server) ListRecommendedEvents(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	events, err := server.catalog.Recommended(ctx, userID)
	if err != nil {
		util.LOGGER.Error("GET /api/events/recommended: failed to build recommendations", "user", userID.Hex(), "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Case-insensitive substring search over title, description and category name
func (server *Server) SearchEvents(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("query"))
	if query == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing search query"})
		return
	}

	events, err := server.catalog.Search(ctx, query)
	if err != nil {
		util.LOGGER.Error("GET /api/events/search: failed to search events", "query", query, "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Explicitly sorted listing; explicit sort replaces preference ranking
func (server *Server) SortEvents(ctx *gin.Context) {
	events, err := server.catalog.Sort(ctx, ctx.Query("criteria"), ctx.Query("order"))
	if err != nil {
		util.LOGGER.Warn("GET /api/events/sort-by: failed to sort events",
			"criteria", ctx.Query("criteria"), "order", ctx.Query("order"), "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Event details by human-facing event_id or internal id
func (server *Server) GetEvent(ctx *gin.Context) {
	event, err := server.catalog.Details(ctx, ctx.Param("id"))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("GET /api/events/:id: failed to get event", "id", ctx.Param("id"), "error", err)
		}
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, event)
}

// The requesting organizer's own events, cancelled and pending included
func (server *Server) ListMyEvents(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	events, err := server.queries.ListOrganizerEvents(ctx, userID)
	if err != nil {
		util.LOGGER.Error("GET /api/events/myevents: failed to list organizer events", "user", userID.Hex(), "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// Parse the shared multipart fields of create/update requests
type eventForm struct {
	Title        string
	Description  string
	Location     string
	Date         string
	StartTime    string
	EndTime      string
	IsPaid       bool
	TicketPrice  float64
	Discount     float64
	MaxAttendees *int64
	FoodStalls   bool
	Category     []primitive.ObjectID
}

func parseEventForm(ctx *gin.Context) (*eventForm, error) {
	form := &eventForm{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Location:    ctx.PostForm("location"),
		Date:        ctx.PostForm("date"),
		StartTime:   ctx.PostForm("startTime"),
		EndTime:     ctx.PostForm("endTime"),
	}

	form.IsPaid = ctx.PostForm("isPaid") == "true"
	form.FoodStalls = ctx.PostForm("food_stalls") == "true"

	if raw := ctx.PostForm("ticketPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, db.NewValidationError("Invalid ticket price")
		}
		form.TicketPrice = price
	}
	if raw := ctx.PostForm("discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, db.NewValidationError("Invalid discount")
		}
		form.Discount = discount
	}
	if raw := ctx.PostForm("maxAttendees"); raw != "" {
		max, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, db.NewValidationError("Invalid maximum attendees")
		}
		form.MaxAttendees = &max
	}

	for _, raw := range ctx.PostFormArray("category") {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, db.NewValidationError("Invalid category ID")
		}
		form.Category = append(form.Category, id)
	}

	return form, nil
}

// Upload every submitted image and collect the public URLs
func (server *Server) uploadImages(ctx *gin.Context) ([]string, error) {
	multipartForm, err := ctx.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var urls []string
	for _, file := range multipartForm.File["images"] {
		url, err := server.uploadService.UploadImage(ctx, file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Create a new event as the requesting organizer. Starts pending approval.
func (server *Server) CreateEvent(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	form, err := parseEventForm(ctx)
	if err != nil {
		util.LOGGER.Warn("POST /api/events/new: failed to parse form", "error", err)
		server.writeError(ctx, err)
		return
	}

	images, err := server.uploadImages(ctx)
	if err != nil {
		util.LOGGER.Error("POST /api/events/new: failed to upload event images", "error", err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to upload event images"})
		return
	}

	event, err := server.queries.CreateEvent(ctx, &db.Event{
		UserID:       userID,
		Title:        form.Title,
		Description:  form.Description,
		Location:     form.Location,
		Date:         form.Date,
		StartTime:    form.StartTime,
		EndTime:      form.EndTime,
		IsPaid:       form.IsPaid,
		TicketPrice:  form.TicketPrice,
		Discount:     form.Discount,
		MaxAttendees: form.MaxAttendees,
		FoodStalls:   form.FoodStalls,
		Category:     form.Category,
		Images:       images,
	})
	if err != nil {
		if !db.IsValidation(err) {
			util.LOGGER.Error("POST /api/events/new: failed to create event", "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// Only the owning organizer or an admin may modify an event
func (server *Server) canManage(ctx *gin.Context, event *db.Event) bool {
	claims := server.currentClaims(ctx)
	if claims == nil {
		return false
	}
	if claims.Role == db.Admin {
		return true
	}
	userID, ok := server.currentUserID(ctx)
	return ok && event.UserID == userID
}

// Update an event and notify every registered attendee about what changed
func (server *Server) UpdateEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	before, err := server.queries.FindEvent(ctx, id)
	if err != nil {
		server.writeError(ctx, err)
		return
	}
	if !server.canManage(ctx, before) {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "You are not allowed to modify this event"})
		return
	}

	form, err := parseEventForm(ctx)
	if err != nil {
		util.LOGGER.Warn("PUT /api/events/update/:id: failed to parse form", "id", id, "error", err)
		server.writeError(ctx, err)
		return
	}

	images, err := server.uploadImages(ctx)
	if err != nil {
		util.LOGGER.Error("PUT /api/events/update/:id: failed to upload event images", "id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to upload event images"})
		return
	}

	event, err := server.queries.UpdateEvent(ctx, id, db.EventUpdate{
		Title:        form.Title,
		Description:  form.Description,
		Location:     form.Location,
		Date:         form.Date,
		StartTime:    form.StartTime,
		EndTime:      form.EndTime,
		IsPaid:       form.IsPaid,
		TicketPrice:  form.TicketPrice,
		Discount:     form.Discount,
		MaxAttendees: form.MaxAttendees,
		FoodStalls:   form.FoodStalls,
		Images:       images,
		Category:     form.Category,
	})
	if err != nil {
		if !db.IsValidation(err) && !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("PUT /api/events/update/:id: failed to update event", "id", id, "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	if err := server.notifier.NotifyAttendees(ctx, event, notify.UpdateMessage(before, event)); err != nil {
		// Attendees keep their tickets either way; the update itself succeeded
		util.LOGGER.Error("PUT /api/events/update/:id: failed to notify attendees", "id", id, "error", err)
	}
	server.catalog.InvalidatePopular(ctx)

	ctx.JSON(http.StatusOK, event)
}

// Cancel an event (idempotent) and notify attendees
func (server *Server) CancelEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	existing, err := server.queries.FindEvent(ctx, id)
	if err != nil {
		server.writeError(ctx, err)
		return
	}
	if !server.canManage(ctx, existing) {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "You are not allowed to cancel this event"})
		return
	}

	event, err := server.queries.CancelEvent(ctx, id)
	if err != nil {
		util.LOGGER.Error("POST /api/events/:id/cancel: failed to cancel event", "id", id, "error", err)
		server.writeError(ctx, err)
		return
	}

	if err := server.notifier.NotifyAttendees(ctx, event, notify.CancelMessage(event)); err != nil {
		util.LOGGER.Error("POST /api/events/:id/cancel: failed to notify attendees", "id", id, "error", err)
	}
	server.catalog.InvalidatePopular(ctx)

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Event cancelled successfully"})
}

// Hard delete an event
func (server *Server) DeleteEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	existing, err := server.queries.FindEvent(ctx, id)
	if err != nil {
		server.writeError(ctx, err)
		return
	}
	if !server.canManage(ctx, existing) {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "You are not allowed to delete this event"})
		return
	}

	if err := server.queries.DeleteEvent(ctx, id); err != nil {
		util.LOGGER.Error("DELETE /api/events/:id: failed to delete event", "id", id, "error", err)
		server.writeError(ctx, err)
		return
	}
	server.catalog.InvalidatePopular(ctx)

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Event deleted successfully"})
}

// Admin approval transition: pending -> approved/rejected
func (server *Server) SetEventStatus(ctx *gin.Context) {
	var req struct {
		Status db.ApprovalStatus `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing or invalid status"})
		return
	}
	if req.Status != db.EventApproved && req.Status != db.EventRejected && req.Status != db.EventPending {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Unknown approval status"})
		return
	}

	event, err := server.queries.SetApprovalStatus(ctx, ctx.Param("id"), req.Status)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("PUT /api/events/:id/status: failed to set approval status",
				"id", ctx.Param("id"), "status", req.Status, "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// Read-only category listing used by clients to build search/preference UIs
func (server *Server) ListCategories(ctx *gin.Context) {
	categories, err := server.queries.ListCategories(ctx)
	if err != nil {
		util.LOGGER.Error("GET /api/categories: failed to list categories", "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}
