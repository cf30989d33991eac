package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// FulfillmentClaims is the payload of the token handed to the downstream
// pizza factory together with a created order.
type FulfillmentClaims struct {
	OrderID uuid.UUID `json:"order_id"`
	DinerID uuid.UUID `json:"diner_id"`
	StoreID uuid.UUID `json:"store_id"`
	Total   float64   `json:"total"`
	jwt.RegisteredClaims
}

func getJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("FATAL: JWT_SECRET environment variable is not set. Refusing to start with an insecure configuration.")
	}
	return secret
}

// sessionTTL returns the configured session lifetime, or zero when sessions
// do not expire. Expiry is off unless SESSION_TTL_HOURS is set; session
// revocation happens through the sessions table either way.
func sessionTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func GenerateToken(userID uuid.UUID, email string) (string, error) {
	secret := getJWTSecret()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat has second resolution, so the jti is what keeps two
			// tokens for the same user distinct within one second.
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "pizza-backend",
		},
	}
	if ttl := sessionTTL(); ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateFulfillmentToken signs the order facts the factory needs to verify.
func GenerateFulfillmentToken(orderID, dinerID, storeID uuid.UUID, total float64) (string, error) {
	secret := getJWTSecret()

	claims := FulfillmentClaims{
		OrderID: orderID,
		DinerID: dinerID,
		StoreID: storeID,
		Total:   total,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "pizza-backend",
			Audience: jwt.ClaimStrings{"pizza-factory"},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString string) (*Claims, error) {
	secret := getJWTSecret()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
