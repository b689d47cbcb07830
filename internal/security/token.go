package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies short-lived JWTs used for password resets
// and voice call room access.
type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}
}

// ResetClaims are the claims carried by a password reset token.
type ResetClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// RoomClaims grant access to a single voice call room.
type RoomClaims struct {
	UserID string `json:"uid"`
	RoomID string `json:"room"`
	jwt.RegisteredClaims
}

// IssueResetToken returns a signed password reset token for the user.
func (t *TokenIssuer) IssueResetToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   "password-reset",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyResetToken validates a reset token and returns the user ID it was
// issued for.
func (t *TokenIssuer) VerifyResetToken(tokenString string) (string, error) {
	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithSubject("password-reset"),
	)
	if err != nil {
		return "", fmt.Errorf("invalid reset token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid reset token")
	}
	return claims.UserID, nil
}

// IssueRoomToken returns a signed token granting userID access to roomID.
func (t *TokenIssuer) IssueRoomToken(userID, roomID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RoomClaims{
		UserID: userID,
		RoomID: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   "voice-room",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyRoomToken validates a room token and returns the user and room IDs.
func (t *TokenIssuer) VerifyRoomToken(tokenString string) (userID, roomID string, err error) {
	claims := &RoomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithSubject("voice-room"),
	)
	if err != nil {
		return "", "", fmt.Errorf("invalid room token: %w", err)
	}
	if !token.Valid || claims.UserID == "" || claims.RoomID == "" {
		return "", "", fmt.Errorf("invalid room token")
	}
	return claims.UserID, claims.RoomID, nil
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	return t.secret, nil
}
