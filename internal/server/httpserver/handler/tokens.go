package handler

import (
	"fmt"
	"net/http"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/core/service"
)

// handleMint handles POST /v1/tokens.
func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req MintTokenRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.UserID == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("user_id is required"))
		return
	}

	var capability domain.Capability
	if req.Capability != nil {
		if *req.Capability < 0 || *req.Capability > 0xff {
			h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("capability %d: must be 0..255", *req.Capability)))
			return
		}
		capability = domain.Capability(*req.Capability)
	}

	resp, err := h.tokens.Mint(r.Context(), &service.MintRequest{
		UserID:     req.UserID,
		Capability: capability,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, MintTokenResponse{
		Token:      resp.Token,
		Subject:    resp.Subject,
		JTI:        resp.JTI,
		Capability: int(resp.Capability),
	})
}

// handleValidate handles POST /v1/tokens/validate. An invalid or revoked
// token is a 200 with valid=false; only failures to decide are errors.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.Token == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("token is required"))
		return
	}

	resp, err := h.tokens.Validate(r.Context(), &service.ValidateRequest{Token: req.Token})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := ValidateTokenResponse{
		Valid:   resp.Valid,
		Revoked: resp.Revoked,
		Reason:  resp.Reason,
	}
	if resp.Valid {
		out.Claims = &Claims{
			Subject:    resp.Claims.Subject,
			JTI:        resp.Claims.JTI,
			Capability: int(resp.Claims.Capability),
		}
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

// handleRevoke handles POST /v1/tokens/revoke.
func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.Token == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("token is required"))
		return
	}

	resp, err := h.tokens.Revoke(r.Context(), &service.RevokeRequest{Token: req.Token})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := RevokeTokenResponse{Subject: resp.Subject, JTI: resp.JTI}
	if !resp.ExpiresAt.IsZero() {
		out.ExpiresAt = resp.ExpiresAt.UTC()
	}
	h.writeJSON(w, r, http.StatusOK, out)
}
