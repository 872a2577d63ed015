package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// AuditMiddleware records mutating API requests as audit log rows. Writes
// are best-effort; a failed audit insert never fails the request.
type AuditMiddleware struct {
	repo usecase.AuditRepository
}

// NewAuditMiddleware creates a new AuditMiddleware.
func NewAuditMiddleware(repo usecase.AuditRepository) *AuditMiddleware {
	return &AuditMiddleware{repo: repo}
}

// Wrap wraps an http.Handler with audit logging for POST/PUT/DELETE.
func (m *AuditMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		rec := &auditRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		scope, ok := GetScopeFromContext(r.Context())
		if !ok {
			return
		}

		action, resourceType, resourceID := classifyAudit(r.URL.Path)
		if action == "" {
			return
		}

		status := domain.AuditStatusSuccess
		if rec.statusCode >= http.StatusBadRequest {
			status = domain.AuditStatusFailure
		}

		var actorID string
		if claims, ok := GetClaimsFromContext(r.Context()); ok {
			actorID = claims.UserID
		}

		entry := &domain.AuditLog{
			Scope:        scope,
			ActorID:      actorID,
			Action:       string(action),
			ResourceType: resourceType,
			ResourceID:   resourceID,
			RequestID:    chimiddleware.GetReqID(r.Context()),
			Status:       string(status),
			CreatedAt:    time.Now().UTC(),
		}

		if body := rec.body.Bytes(); len(body) > 0 && json.Valid(body) {
			if status == domain.AuditStatusSuccess {
				raw := json.RawMessage(body)
				if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
					entry.AfterState = domain.MarshalState(map[string]json.RawMessage{"items": raw})
				} else {
					entry.AfterState = domain.MarshalState(raw)
				}
			} else {
				entry.ErrorMessage = string(body)
			}
		}

		if err := m.repo.Create(r.Context(), entry); err != nil {
			log.Warn().Err(err).Str("action", entry.Action).Msg("audit log write failed")
		}
	})
}

// auditBodyLimit caps how much of a response body an audit row retains.
const auditBodyLimit = 64 << 10

type auditRecorder struct {
	http.ResponseWriter

	statusCode int
	body       bytes.Buffer
}

func (r *auditRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *auditRecorder) Write(p []byte) (int, error) {
	if r.body.Len() < auditBodyLimit {
		remaining := auditBodyLimit - r.body.Len()
		if len(p) <= remaining {
			r.body.Write(p)
		} else {
			r.body.Write(p[:remaining])
		}
	}

	return r.ResponseWriter.Write(p)
}

// classifyAudit maps a mutating request path to an audit action. Paths that
// do not correspond to an auditable action return an empty action.
func classifyAudit(path string) (domain.AuditAction, string, string) {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "", "", ""
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch parts[0] {
	case "accounts":
		if len(parts) == 1 {
			return domain.AuditActionAccountCreate, "account", ""
		}
	case "products":
		if len(parts) == 1 {
			return domain.AuditActionProductCreate, "product", ""
		}
	case "entries":
		if len(parts) == 2 {
			switch parts[1] {
			case "sales", "purchases", "payments":
				return domain.AuditActionEntryPost, "entry", ""
			}
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "cancel":
				return domain.AuditActionEntryCancel, "entry", parts[1]
			case "revert":
				return domain.AuditActionEntryRevert, "entry", parts[1]
			case "return":
				return domain.AuditActionSaleReturn, "entry", parts[1]
			case "settle":
				return domain.AuditActionReturnSettle, "entry", parts[1]
			}
		}
	case "sales":
		if len(parts) == 3 && parts[2] == "cancel" {
			return domain.AuditActionEntryCancel, "sale", parts[1]
		}
	}

	return "", "", ""
}
