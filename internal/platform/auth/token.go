package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

// Claims embeds the clinic identity into the signed token.
type Claims struct {
	jwt.RegisteredClaims
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret []byte, expiry time.Duration) *TokenIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, expiry: expiry}
}

// Issue signs a token for the principal with the configured expiry window.
func (t *TokenIssuer) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		Username:  p.Username,
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		DoctorID:  p.DoctorID,
		PatientID: p.PatientID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token, returning the embedded principal.
func (t *TokenIssuer) Verify(tokenStr string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Principal{}, apperr.Unauthorized("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, apperr.Unauthorized("invalid token subject")
	}
	if !ValidRole(claims.Role) {
		return Principal{}, apperr.Unauthorized("invalid token role")
	}

	return Principal{
		UserID:    userID,
		Username:  claims.Username,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		DoctorID:  claims.DoctorID,
		PatientID: claims.PatientID,
	}, nil
}
