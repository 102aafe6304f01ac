package security

import (
	"fmt"
	"time"

	"github.com/Massamba505/Events-Api/db"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JWT service
type JWTService struct {
	secretKey       []byte
	tokenExpiration time.Duration
}

const Issuer = "events-api"

// Custom claim definition
type CustomClaims struct {
	ID                   string  `json:"id"` // UserID hex
	Role                 db.Role `json:"role"`
	jwt.RegisteredClaims         // Embed the JWT Registered claims
}

// UserID returns the claim's user id as an ObjectID.
func (claims *CustomClaims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(claims.ID)
}

// Constructor for JWT service
func NewJWTService(secretKey []byte, tokenExpiration time.Duration) *JWTService {
	return &JWTService{
		secretKey:       secretKey,
		tokenExpiration: tokenExpiration,
	}
}

// Create token
func (service *JWTService) CreateToken(id primitive.ObjectID, role db.Role) (string, error) {
	claims := CustomClaims{
		ID:   id.Hex(),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(service.tokenExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(service.secretKey)
}

// Verify token
func (service *JWTService) VerifyToken(signedToken string) (*CustomClaims, error) {
	// Use custom parser with leeway of 30 secs
	parser := jwt.NewParser(jwt.WithLeeway(30 * time.Second))

	parsedToken, err := parser.ParseWithClaims(signedToken, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		// Check for signing method to avoid [alg: none] trick
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return service.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsedToken.Claims.(*CustomClaims)
	if !(ok && parsedToken.Valid) {
		return nil, jwt.ErrTokenInvalidClaims
	}

	if claims.Issuer != Issuer {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}

	if claims.Role != db.Customer && claims.Role != db.Organizer && claims.Role != db.Admin {
		return nil, fmt.Errorf("invalid user role: %s", claims.Role)
	}

	return claims, nil
}
