package api

import (
	"errors"
	"net/http"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/catalog"
	"github.com/Massamba505/Events-Api/service/issuance"
	"github.com/Massamba505/Events-Api/service/notify"
	"github.com/Massamba505/Events-Api/service/security"
	"github.com/Massamba505/Events-Api/service/uploader"
	"github.com/Massamba505/Events-Api/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server struct, holds the router, dependencies and system config
type Server struct {
	// API router
	router *gin.Engine

	// Queries
	queries *db.Queries

	// System config
	config *util.Config

	// Dependencies
	jwtService    *security.JWTService
	engine        *issuance.Engine
	catalog       *catalog.Catalog
	notifier      *notify.Notifier
	uploadService *uploader.CloudinaryService
}

// Constructor method for server struct
func NewServer(
	queries *db.Queries,
	config *util.Config,
	jwtService *security.JWTService,
	engine *issuance.Engine,
	eventCatalog *catalog.Catalog,
	notifier *notify.Notifier,
	uploadService *uploader.CloudinaryService,
) *Server {
	return &Server{
		router:        gin.Default(),
		queries:       queries,
		config:        config,
		jwtService:    jwtService,
		engine:        engine,
		catalog:       eventCatalog,
		notifier:      notifier,
		uploadService: uploadService,
	}
}

// Helper method to register handler for API
func (server *Server) RegisterHandler() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	server.router.Use(cors.New(corsConfig))

	// API routes
	api := server.router.Group("/api")
	{
		api.GET("/", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"message": "Events API"})
		})

		events := api.Group("/events")
		{
			events.GET("/", server.ListEvents)
			events.GET("/upcoming", server.ListUpcomingEvents)
			events.GET("/inprogress", server.ListInProgressEvents)
			events.GET("/past", server.ListPastEvents)
			events.GET("/popular", server.ListPopularEvents)
			events.GET("/search", server.SearchEvents)
			events.GET("/sort-by", server.SortEvents)

			events.GET("/recommended", server.Authenticate, server.ListRecommendedEvents)
			events.GET("/myevents", server.Authenticate, server.ListMyEvents)
			events.POST("/new", server.Authenticate, server.RequireRole(db.Organizer, db.Admin), server.CreateEvent)
			events.PUT("/update/:id", server.Authenticate, server.UpdateEvent)
			events.POST("/:id/cancel", server.Authenticate, server.CancelEvent)
			events.PATCH("/:id/cancel", server.Authenticate, server.CancelEvent)
			events.DELETE("/:id", server.Authenticate, server.DeleteEvent)
			events.PUT("/:id/status", server.Authenticate, server.RequireRole(db.Admin), server.SetEventStatus)

			// Keep the parameterized detail route last in reading order; gin
			// resolves the static siblings above first.
			events.GET("/:id", server.GetEvent)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("/buy", server.Authenticate, server.BuyTicket)
			tickets.GET("/success/:session_id", server.ConfirmTicket)
			tickets.GET("/cancel/:session_id", server.CancelCheckout)
			tickets.GET("/mytickets", server.Authenticate, server.MyTickets)
			tickets.GET("/:ticketId", server.Authenticate, server.GetTicket)
			tickets.POST("/:ticketId/accept", server.Authenticate, server.RequireRole(db.Organizer, db.Admin), server.AcceptTicket)
			tickets.POST("/:ticketId/refund", server.Authenticate, server.RefundTicket)
			tickets.POST("/:ticketId/cancel", server.Authenticate, server.CancelTicket)
		}

		notifications := api.Group("/notifications", server.Authenticate)
		{
			notifications.GET("/", server.ListNotifications)
			notifications.PATCH("/:id/read", server.ReadNotification)
			notifications.DELETE("/:id", server.DeleteNotification)
		}

		api.GET("/categories", server.ListCategories)
	}
}

// Start server
func (server *Server) Start() error {
	server.RegisterHandler()
	return server.router.Run(server.config.ServerAddr)
}

// Error response struct
type ErrorResponse struct {
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Success response struct for operations with nothing else to return
type SuccessMessage struct {
	Message string `json:"message"`
}

// Translate a db/service error into one JSON error response. Handlers that
// need extra context log before calling this.
func (server *Server) writeError(ctx *gin.Context, err error) {
	switch {
	case db.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, db.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
	case errors.Is(err, db.ErrDuplicateRegistration):
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "You are already registered for this event",
			Code:    "duplicate_registration",
		})
	case errors.Is(err, db.ErrCapacityExceeded):
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "This event has reached its maximum capacity",
			Code:    "capacity_exceeded",
		})
	case errors.Is(err, db.ErrTicketAlreadyUsed):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Ticket has already been used"})
	case errors.Is(err, issuance.ErrWrongOrganizer):
		ctx.JSON(http.StatusForbidden, ErrorResponse{Message: "Only the event organizer can scan tickets"})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
