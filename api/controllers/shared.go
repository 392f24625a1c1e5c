package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/astraline/astraline-backend/api/middleware"
	"github.com/astraline/astraline-backend/internal/payments"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
)

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// actorFromContext reconstructs the authenticated actor from the request
// context populated by the auth middleware.
func actorFromContext(r *http.Request) (payments.Actor, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return payments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return payments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	actor := payments.Actor{
		UserID: userID,
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}
	if rawAgent := middleware.AgentIDFromContext(r.Context()); rawAgent != "" {
		agentID, err := uuid.Parse(rawAgent)
		if err != nil {
			return payments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid agent id")
		}
		actor.AgentID = &agentID
	}
	return actor, nil
}
