package api

import (
	"errors"
	"net/http"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The requesting user's notifications, newest first
func (server *Server) ListNotifications(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	notifications, err := server.queries.ListNotifications(ctx, userID)
	if err != nil {
		util.LOGGER.Error("GET /api/notifications: failed to list notifications", "user", userID.Hex(), "error", err)
		server.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, notifications)
}

func (server *Server) notificationIDParam(ctx *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid notification ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// Mark one of the requester's notifications read
func (server *Server) ReadNotification(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	id, ok := server.notificationIDParam(ctx)
	if !ok {
		return
	}

	if err := server.queries.MarkNotificationRead(ctx, id, userID); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("PATCH /api/notifications/:id/read: failed to mark notification read",
				"notification", id.Hex(), "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Notification marked as read"})
}

// Delete one of the requester's notifications
func (server *Server) DeleteNotification(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}
	id, ok := server.notificationIDParam(ctx)
	if !ok {
		return
	}

	if err := server.queries.DeleteNotification(ctx, id, userID); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			util.LOGGER.Error("DELETE /api/notifications/:id: failed to delete notification",
				"notification", id.Hex(), "error", err)
		}
		server.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{Message: "Notification deleted"})
}
