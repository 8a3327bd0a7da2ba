package invite

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Service signs and verifies invite tokens. A host shares the token as part
// of an invite link; joining with it resolves the session to sit down at.
type Service struct {
	secret string
	issuer string
	ttl    time.Duration
}

// Invite is the verified content of an invite token.
type Invite struct {
	SessionID  string
	HostUserID string
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = time.Hour * 24
	}
	return &Service{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateToken signs an invite for the given session.
func (s *Service) GenerateToken(sessionID, hostUserID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("invite service is nil")
	}
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("invite config is incomplete")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": hostUserID,
		"sid": sessionID,
		"exp": time.Now().Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken checks the signature and expiry of a token and returns the
// invite it carries.
func (s *Service) VerifyToken(tokenString string) (*Invite, error) {
	if s == nil {
		return nil, fmt.Errorf("invite service is nil")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse invite token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invite token is invalid")
	}
	if issuer, _ := claims["iss"].(string); issuer != s.issuer {
		return nil, fmt.Errorf("invite token has wrong issuer")
	}
	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return nil, fmt.Errorf("invite token carries no session")
	}
	hostUserID, _ := claims["sub"].(string)
	return &Invite{SessionID: sessionID, HostUserID: hostUserID}, nil
}
