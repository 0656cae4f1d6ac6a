package service

import (
	"context"
	"fmt"
	"strings"

	"record_access_service/internal/access"
	"record_access_service/internal/config"
	"record_access_service/internal/models"
	"record_access_service/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// PrincipalService classifies principal references and extracts the current
// principal from gateway-issued tokens. It implements the access core's
// PrincipalResolver and RightsChecker collaborators.
type PrincipalService struct {
	groupRepo *repository.GroupRepository
}

func NewPrincipalService() *PrincipalService {
	return &PrincipalService{
		groupRepo: repository.Repositories_instance.GroupRepository,
	}
}

// GetType classifies a reference: known groups are groups, anything else
// non-blank is assumed to be a user.
func (s *PrincipalService) GetType(ctx context.Context, principal string) access.PrincipalType {
	if strings.TrimSpace(principal) == "" {
		return access.PrincipalUnknown
	}
	if s.groupRepo.IsGroup(ctx, principal) {
		return access.PrincipalGroup
	}
	return access.PrincipalUser
}

// IsAdministrator reports whether the principal belongs to the configured
// administrators group. Administrators act as owner on every record.
func (s *PrincipalService) IsAdministrator(ctx context.Context, principal, recordID string) bool {
	if principal == "" {
		return false
	}
	return s.groupRepo.IsMemberOf(ctx, principal, config.ServiceConfig.AdminGroup)
}

// ValidateToken parses and verifies a gateway JWT and returns its claims.
func (s *PrincipalService) ValidateToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.ServiceConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %s", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
