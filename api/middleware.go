package api

import (
	"net/http"
	"strings"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/security"
	"github.com/Massamba505/Events-Api/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const claimsKey = "claims"

// Extract the bearer token from the Authorization header, empty if absent
func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authentication middleware: verify the bearer token and stash the claims
func (server *Server) Authenticate(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
		return
	}

	claims, err := server.jwtService.VerifyToken(token)
	if err != nil {
		util.LOGGER.Warn("Failed to verify access token", "error", err)
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired access token"})
		return
	}

	ctx.Set(claimsKey, claims)
	ctx.Next()
}

// Role middleware: reject requesters whose role is not in the allow list.
// Must run after Authenticate.
func (server *Server) RequireRole(roles ...db.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims := server.currentClaims(ctx)
		if claims == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing access token"})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "You are not allowed to perform this action"})
	}
}

// Claims stashed by Authenticate, nil when the request is anonymous
func (server *Server) currentClaims(ctx *gin.Context) *security.CustomClaims {
	value, ok := ctx.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*security.CustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// Authenticated requester's user ID. Only valid after Authenticate.
func (server *Server) currentUserID(ctx *gin.Context) (primitive.ObjectID, bool) {
	claims := server.currentClaims(ctx)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := claims.UserID()
	if err != nil {
		util.LOGGER.Error("Malformed user ID in verified token", "id", claims.ID, "error", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// Best-effort identity for public listings: a valid bearer token personalizes
// the ranking, anything else degrades to anonymous.
func (server *Server) optionalViewer(ctx *gin.Context) *primitive.ObjectID {
	token := bearerToken(ctx)
	if token == "" {
		return nil
	}
	claims, err := server.jwtService.VerifyToken(token)
	if err != nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &id
}
