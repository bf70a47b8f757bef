package handler

import (
	"net/http"

	"employee-records/internal/middleware"
	"employee-records/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.Username = identity.Subject
	actor.Role = identity.Role

	return actor
}
