package access

import (
	"crypto/subtle"
	"strings"

	apperrors "linentrack/internal/errors"
)

// Gate selects a role from a submitted passcode.
type Gate struct {
	clientCode []byte
	adminCode  []byte
}

func NewGate(clientCode, adminCode string) *Gate {
	return &Gate{
		clientCode: []byte(clientCode),
		adminCode:  []byte(adminCode),
	}
}

func (g *Gate) Authenticate(code string) (Role, error) {
	submitted := []byte(strings.TrimSpace(code))
	if len(submitted) == 0 {
		return "", apperrors.NewUnauthorizedError("access code is required")
	}

	// Both codes are always compared.
	isAdmin := subtle.ConstantTimeCompare(submitted, g.adminCode) == 1
	isClient := subtle.ConstantTimeCompare(submitted, g.clientCode) == 1

	switch {
	case isAdmin:
		return RoleAdmin, nil
	case isClient:
		return RoleClient, nil
	}
	return "", apperrors.NewUnauthorizedError("access code is not valid")
}
