package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimgen/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Code: code, Message: message})
}

// WriteError maps domain sentinels onto HTTP statuses. Anything unmapped is a
// 500 with a generic body; the real error goes to the log, not the client.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRuleNotFound),
		errors.Is(err, domain.ErrRequirementNotFound),
		errors.Is(err, domain.ErrAuditNotFound),
		errors.Is(err, domain.ErrGenerationNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, domain.ErrRuleExists):
		WriteErrorCode(c, http.StatusConflict, "RULE_EXISTS", err.Error())
	case errors.Is(err, domain.ErrRuleImmutable):
		WriteErrorCode(c, http.StatusConflict, "RULE_IMMUTABLE", err.Error())
	case errors.Is(err, domain.ErrRuleState):
		WriteErrorCode(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, domain.ErrRuleReferenced):
		WriteErrorCode(c, http.StatusConflict, "RULE_REFERENCED", err.Error())
	case errors.Is(err, domain.ErrPredicateChanged):
		WriteErrorCode(c, http.StatusConflict, "PREDICATE_CHANGED", err.Error())
	case errors.Is(err, domain.ErrAuditImmutable):
		WriteErrorCode(c, http.StatusConflict, "AUDIT_IMMUTABLE", err.Error())
	case errors.Is(err, domain.ErrRegenerationNotAllowed):
		WriteErrorCode(c, http.StatusConflict, "REGENERATION_NOT_ALLOWED", err.Error())
	case errors.Is(err, domain.ErrGenerationConflict):
		WriteErrorCode(c, http.StatusConflict, "GENERATION_CONFLICT", err.Error())
	default:
		var structural *domain.StructuralError
		var mismatch *domain.TypeMismatchError
		if errors.As(err, &structural) || errors.As(err, &mismatch) {
			WriteErrorCode(c, http.StatusUnprocessableEntity, "INVALID_PREDICATE", err.Error())
			return
		}
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
