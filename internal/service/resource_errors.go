package service

import (
	"errors"
	"net/http"

	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

// guardOwnership converts an ownership failure into a 403.
func guardOwnership(principal domain.AuthenticatedPrincipal, ownerID int64, message string) error {
	if err := auth.RequireOwnership(principal, ownerID); err != nil {
		return apperrors.Wrap(apperrors.CodeForbidden, message, http.StatusForbidden, err)
	}
	return nil
}

func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
