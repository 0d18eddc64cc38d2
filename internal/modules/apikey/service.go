package apikey

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/token"

	"gorm.io/gorm"
)

const (
	keySecretBytes    = 24
	keySecretPrefix   = "rk_"
	keyDisplayChars   = 12
	defaultRateLimit  = 100
	defaultRatePeriod = 60
)

// Service issues, edits and revokes API keys and enforces their per-key
// fixed-window rate limits at request time.
type Service struct {
	keys       KeyStore
	windows    WindowStore
	activities ActivityWriter
	keyPepper  string
}

func NewService(keys KeyStore, windows WindowStore, activities ActivityWriter, keyPepper string) *Service {
	return &Service{
		keys:       keys,
		windows:    windows,
		activities: activities,
		keyPepper:  keyPepper,
	}
}

// Create issues a new key. The plaintext secret is returned exactly once;
// afterwards only the prefix is ever shown.
func (s *Service) Create(ctx context.Context, adminID int64, req CreateKeyRequest) (*domain.APIKey, string, error) {
	raw, err := s.newSecret()
	if err != nil {
		return nil, "", err
	}

	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	ratePeriod := req.RateLimitPeriod
	if ratePeriod <= 0 {
		ratePeriod = defaultRatePeriod
	}
	endpoints := strings.TrimSpace(req.AllowedEndpoints)
	if endpoints == "" {
		endpoints = "*"
	}

	key := &domain.APIKey{
		AdminID:          adminID,
		KeyHash:          token.HashWithPepper(raw, s.keyPepper),
		Prefix:           token.Prefix(raw, keyDisplayChars),
		Name:             req.Name,
		Description:      req.Description,
		CanRead:          req.CanRead,
		CanWrite:         req.CanWrite,
		CanDelete:        req.CanDelete,
		CanManageKeys:    req.CanManageKeys,
		AllowedEndpoints: endpoints,
		RateLimit:        rateLimit,
		RateLimitPeriod:  ratePeriod,
		IsActive:         true,
	}
	if req.ExpiresInDays > 0 {
		exp := time.Now().AddDate(0, 0, req.ExpiresInDays)
		key.ExpiresAt = &exp
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", err
	}

	s.appendActivity(ctx, adminID, "API_KEY_CREATED", key.ID)
	return key, raw, nil
}

// Regenerate swaps in a brand-new secret under the same key id. The old
// secret stops authenticating the moment the hash is replaced.
func (s *Service) Regenerate(ctx context.Context, keyID, adminID int64) (*domain.APIKey, string, error) {
	key, err := s.getOwned(ctx, keyID, adminID)
	if err != nil {
		return nil, "", err
	}
	if key.RevokedAt != nil {
		return nil, "", ErrKeyRevoked
	}

	raw, err := s.newSecret()
	if err != nil {
		return nil, "", err
	}

	newHash := token.HashWithPepper(raw, s.keyPepper)
	newPrefix := token.Prefix(raw, keyDisplayChars)
	if err := s.keys.UpdateFields(ctx, key.ID, map[string]any{
		"key_hash": newHash,
		"prefix":   newPrefix,
	}); err != nil {
		return nil, "", err
	}

	key.KeyHash = newHash
	key.Prefix = newPrefix
	s.appendActivity(ctx, adminID, "API_KEY_REGENERATED", key.ID)
	return key, raw, nil
}

// Update patches key metadata without touching the secret. Revoked keys are
// immutable.
func (s *Service) Update(ctx context.Context, keyID, adminID int64, patch UpdateKeyRequest) (*domain.APIKey, error) {
	key, err := s.getOwned(ctx, keyID, adminID)
	if err != nil {
		return nil, err
	}
	if key.RevokedAt != nil {
		return nil, ErrKeyRevoked
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.CanRead != nil {
		fields["can_read"] = *patch.CanRead
	}
	if patch.CanWrite != nil {
		fields["can_write"] = *patch.CanWrite
	}
	if patch.CanDelete != nil {
		fields["can_delete"] = *patch.CanDelete
	}
	if patch.CanManageKeys != nil {
		fields["can_manage_keys"] = *patch.CanManageKeys
	}
	if patch.AllowedEndpoints != nil {
		fields["allowed_endpoints"] = *patch.AllowedEndpoints
	}
	if patch.RateLimit != nil && *patch.RateLimit > 0 {
		fields["rate_limit"] = *patch.RateLimit
	}
	if patch.RateLimitPeriod != nil && *patch.RateLimitPeriod > 0 {
		fields["rate_limit_period"] = *patch.RateLimitPeriod
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	if len(fields) > 0 {
		if err := s.keys.UpdateFields(ctx, key.ID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.keys.GetByID(ctx, key.ID)
	if err != nil {
		return nil, err
	}
	s.appendActivity(ctx, adminID, "API_KEY_UPDATED", key.ID)
	return updated, nil
}

// Revoke is terminal: a revoked key can never be reactivated, only a merely
// deactivated key can be toggled back via Update.
func (s *Service) Revoke(ctx context.Context, keyID, adminID int64) error {
	key, err := s.getOwned(ctx, keyID, adminID)
	if err != nil {
		return err
	}
	if key.RevokedAt != nil {
		return nil
	}

	if err := s.keys.UpdateFields(ctx, key.ID, map[string]any{
		"revoked_at": time.Now(),
		"is_active":  false,
	}); err != nil {
		return err
	}
	s.appendActivity(ctx, adminID, "API_KEY_REVOKED", key.ID)
	return nil
}

func (s *Service) List(ctx context.Context, adminID int64) ([]domain.APIKey, error) {
	return s.keys.ListByAdmin(ctx, adminID)
}

func (s *Service) Get(ctx context.Context, keyID, adminID int64) (*domain.APIKey, error) {
	return s.getOwned(ctx, keyID, adminID)
}

// Authenticate resolves a presented secret to a usable key and records the
// lifetime usage counter.
func (s *Service) Authenticate(ctx context.Context, presented string) (*domain.APIKey, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, ErrKeyInvalid
	}

	key, err := s.keys.GetByHash(ctx, token.HashWithPepper(presented, s.keyPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyInvalid
		}
		return nil, err
	}

	now := time.Now()
	if !key.Usable(now) {
		return nil, ErrKeyInvalid
	}

	if err := s.keys.RecordUsage(ctx, key.ID, now); err != nil {
		log.Printf("api_key_usage_record_failed key_id=%d err=%v", key.ID, err)
	}
	return key, nil
}

// EndpointAllowed checks the key's scope string: "*" admits everything,
// otherwise a comma-separated list of exact paths or trailing-* prefixes.
func EndpointAllowed(key *domain.APIKey, endpoint string) bool {
	scope := strings.TrimSpace(key.AllowedEndpoints)
	if scope == "" || scope == "*" {
		return true
	}
	for _, pattern := range strings.Split(scope, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if pattern == "*" || pattern == endpoint {
			return true
		}
		if strings.HasSuffix(pattern, "*") && strings.HasPrefix(endpoint, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}
	return false
}

// CheckRateLimit admits one request into the current fixed window for
// (key, endpoint). Rejections do not consume quota.
func (s *Service) CheckRateLimit(ctx context.Context, key *domain.APIKey, endpoint string) (RateLimitResult, error) {
	period := int64(key.RateLimitPeriod)
	if period <= 0 {
		period = defaultRatePeriod
	}
	now := time.Now().Unix()
	windowStart := (now / period) * period
	windowEnd := windowStart + period

	allowed, count, err := s.windows.IncrementIfBelow(ctx, key.ID, endpoint, windowStart, windowEnd, key.RateLimit)
	if err != nil {
		return RateLimitResult{}, err
	}

	remaining := key.RateLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		Limit:     key.RateLimit,
		ResetAt:   windowEnd,
	}, nil
}

func (s *Service) getOwned(ctx context.Context, keyID, adminID int64) (*domain.APIKey, error) {
	key, err := s.keys.GetByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	// Non-existent and not-owned look the same to the caller.
	if key.AdminID != adminID {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

func (s *Service) newSecret() (string, error) {
	raw, err := token.Generate(keySecretBytes)
	if err != nil {
		return "", err
	}
	return keySecretPrefix + raw, nil
}

func (s *Service) appendActivity(ctx context.Context, adminID int64, action string, keyID int64) {
	if s.activities == nil {
		return
	}
	entity := "api_key"
	if err := s.activities.Append(ctx, &domain.AdminActivity{
		AdminID:  adminID,
		Action:   action,
		Entity:   entity,
		EntityID: &keyID,
	}); err != nil {
		log.Printf("activity_append_failed admin_id=%d action=%s err=%v", adminID, action, err)
	}
}
