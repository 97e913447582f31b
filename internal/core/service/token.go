package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/internal/telemetry/metric"
	"github.com/yndnr/tokmint-go/pkg/token"
)

// TokenServiceConfig holds optional collaborators for TokenService.
type TokenServiceConfig struct {
	// RevocationTTL is how long a revocation is remembered. Zero, the
	// default, keeps it for good; tokens never expire on their own.
	RevocationTTL time.Duration

	// Metrics receives operation counters. Nil disables metrics.
	Metrics *metric.Registry

	// Logger defaults to logger.Default().
	Logger logger.Logger
}

// DefaultTokenServiceConfig returns default configuration.
func DefaultTokenServiceConfig() *TokenServiceConfig {
	return &TokenServiceConfig{}
}

// TokenService mints, validates and revokes tokens.
type TokenService struct {
	issuer  *token.Issuer
	store   revocation.Store
	ttl     time.Duration
	metrics *metric.Registry
	logger  logger.Logger
}

// NewTokenService creates a TokenService. A nil store disables revocation.
func NewTokenService(iss *token.Issuer, store revocation.Store, config *TokenServiceConfig) *TokenService {
	if config == nil {
		config = DefaultTokenServiceConfig()
	}
	if store == nil {
		store = revocation.None{}
	}
	ttl := max(config.RevocationTTL, 0)
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	if config.Metrics != nil {
		config.Metrics.SetEngine(string(iss.Engine()))
	}

	return &TokenService{
		issuer:  iss,
		store:   store,
		ttl:     ttl,
		metrics: config.Metrics,
		logger:  log.With("component", "token_service"),
	}
}

// Engine returns the block cipher engine in use.
func (s *TokenService) Engine() string {
	return string(s.issuer.Engine())
}

// Ping checks that the revocation store answers.
func (s *TokenService) Ping(ctx context.Context) error {
	if _, err := s.store.Len(ctx); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// ============================================================================
// Mint
// ============================================================================

// MintRequest contains parameters for minting.
type MintRequest struct {
	UserID     string            // Required, any form uuid.Parse accepts
	Capability domain.Capability // Entitlement bits
}

// MintResponse contains a freshly minted token.
type MintResponse struct {
	Token      string
	Subject    string
	JTI        string
	Capability domain.Capability
}

// Mint issues a token for req.UserID.
func (s *TokenService) Mint(ctx context.Context, req *MintRequest) (*MintResponse, error) {
	start := time.Now()
	defer s.observe(metric.OpMint, start)

	if req == nil || req.UserID == "" {
		return nil, s.mintFailed(domain.ErrMissingArgument.WithDetails("user_id is required"))
	}
	uid, err := domain.CanonicalUserID(req.UserID)
	if err != nil {
		return nil, s.mintFailed(err)
	}

	var buf token.Buffer
	if err := s.issuer.MintInto(&buf, uid, byte(req.Capability)); err != nil {
		derr := domain.FromTokenError(err)
		s.log(ctx).Error("mint failed", "error", err, "code", domain.GetErrorCode(derr))
		return nil, s.mintFailed(derr)
	}

	claims, err := token.Inspect(buf.Bytes())
	if err != nil {
		return nil, s.mintFailed(domain.ErrInternalServer.WithCause(err))
	}
	if s.metrics != nil {
		s.metrics.TokensMinted.WithLabelValues(s.Engine()).Inc()
	}

	return &MintResponse{
		Token:      buf.String(),
		Subject:    claims.Subject,
		JTI:        claims.JTI,
		Capability: domain.Capability(claims.Capability),
	}, nil
}

func (s *TokenService) mintFailed(err error) error {
	if s.metrics != nil {
		s.metrics.MintFailures.WithLabelValues(domain.GetErrorCode(err)).Inc()
	}
	return err
}

// ============================================================================
// Validate
// ============================================================================

// ValidateRequest contains the token to check.
type ValidateRequest struct {
	Token string
}

// ValidateResponse reports the outcome of a validation. Claims are set
// only when Valid is true. Claims.Subject is authenticated from its 20th
// character on; see token.Claims.
type ValidateResponse struct {
	Valid   bool
	Revoked bool
	Claims  token.Claims
	Reason  string // Domain error code when Valid is false
}

// Validate checks authenticity and then revocation. An unauthentic or
// revoked token is not an error; the error return is reserved for
// failures to decide, such as an unreachable revocation store.
func (s *TokenService) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	start := time.Now()
	defer s.observe(metric.OpValidate, start)

	if req == nil {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}

	claims, err := s.issuer.Verify([]byte(req.Token))
	if err != nil {
		result, code := metric.ResultInvalid, domain.ErrTokenInvalid.Code
		if _, ierr := token.Inspect([]byte(req.Token)); ierr != nil {
			result, code = metric.ResultMalformed, domain.ErrTokenMalformed.Code
		}
		s.countValidation(result)
		return &ValidateResponse{Reason: code}, nil
	}

	revoked, err := s.store.IsRevoked(ctx, claims.JTI)
	if err != nil {
		s.log(ctx).Error("revocation lookup failed", "error", err)
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if revoked {
		s.countValidation(metric.ResultRevoked)
		return &ValidateResponse{Revoked: true, Reason: domain.ErrTokenRevoked.Code}, nil
	}

	s.countValidation(metric.ResultValid)
	return &ValidateResponse{Valid: true, Claims: claims}, nil
}

func (s *TokenService) countValidation(result string) {
	if s.metrics != nil {
		s.metrics.TokensValidated.WithLabelValues(result).Inc()
	}
}

// ============================================================================
// Revoke
// ============================================================================

// RevokeRequest contains the token to revoke.
type RevokeRequest struct {
	Token string
}

// RevokeResponse describes a recorded revocation.
type RevokeResponse struct {
	Subject   string
	JTI       string
	ExpiresAt time.Time // When the revocation entry lapses; zero if never
}

// Revoke records the token's jti. Only authentic tokens can be revoked,
// so a caller cannot fill the store with arbitrary ids.
func (s *TokenService) Revoke(ctx context.Context, req *RevokeRequest) (*RevokeResponse, error) {
	start := time.Now()
	defer s.observe(metric.OpRevoke, start)

	if req == nil {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}

	claims, err := s.issuer.Verify([]byte(req.Token))
	if err != nil {
		if _, ierr := token.Inspect([]byte(req.Token)); ierr != nil {
			return nil, domain.ErrTokenMalformed
		}
		return nil, domain.FromTokenError(err)
	}

	if err := s.store.Revoke(ctx, claims.JTI, s.ttl); err != nil {
		if errors.Is(err, revocation.ErrClosed) {
			return nil, domain.ErrServiceUnavailable.WithCause(err)
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if s.metrics != nil {
		s.metrics.Revocations.Inc()
	}

	s.log(ctx).Info("token revoked", "jti", claims.JTI, "sub", claims.Subject)
	resp := &RevokeResponse{Subject: claims.Subject, JTI: claims.JTI}
	if s.ttl > 0 {
		resp.ExpiresAt = time.Now().Add(s.ttl)
	}
	return resp, nil
}

// ============================================================================
// Inspect
// ============================================================================

// Inspect decodes a token's claims without checking its tag or the
// revocation store.
func Inspect(tok string) (token.Claims, error) {
	claims, err := token.Inspect([]byte(tok))
	if err != nil {
		return token.Claims{}, domain.FromTokenError(err)
	}
	return claims, nil
}

func (s *TokenService) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSince(op, start)
	}
}

func (s *TokenService) log(ctx context.Context) logger.Logger {
	if reqID := logger.RequestIDFromContext(ctx); reqID != "" {
		return s.logger.With("request_id", reqID)
	}
	return s.logger
}
