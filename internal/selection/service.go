package selection

import (
	"context"
	"errors"
	"time"

	"did-optimizer/internal/contextstore"
	"did-optimizer/internal/didapi"
	"did-optimizer/internal/geo"
	"did-optimizer/pkg/logger"
)

var ErrInvalidArgument = errors.New("selection: invalid argument")

// DIDClient is the slice of the remote API the selection path needs.
type DIDClient interface {
	NextDID(ctx context.Context, req didapi.NextDIDRequest) (didapi.Selection, error)
}

// Request identifies one outbound call about to be placed.
type Request struct {
	CampaignID string `json:"campaign_id"`
	AgentID    string `json:"agent_id"`
	Phone      string `json:"phone"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
}

// Result is what the dialer gets back. It always carries a usable Number;
// Fallback marks the configured static DID substituted after the remote
// service was exhausted.
type Result struct {
	Number    string    `json:"number"`
	Algorithm string    `json:"algorithm,omitempty"`
	Fallback  bool      `json:"fallback"`
	Location  geo.Tuple `json:"location"`
}

// Service resolves geography, asks the remote service for a DID, and
// persists the correlation context for the eventual outcome report.
//
// Failure posture: the call flow must never be blocked. Selection failures
// degrade to the fallback DID; context-store failures degrade to an
// unreportable call. Both are logged, neither is surfaced as an error.
type Service struct {
	api         DIDClient
	geo         *geo.Resolver
	store       contextstore.Store
	fallbackDID string

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(api DIDClient, resolver *geo.Resolver, store contextstore.Store, fallbackDID string) *Service {
	return &Service{
		api:         api,
		geo:         resolver,
		store:       store,
		fallbackDID: fallbackDID,
		clock:       time.Now,
	}
}

func (s *Service) Select(ctx context.Context, req Request) (Result, error) {
	if req.CampaignID == "" || req.AgentID == "" || req.Phone == "" {
		return Result{}, ErrInvalidArgument
	}

	log := logger.From(ctx).With("campaign_id", req.CampaignID, "phone", req.Phone)
	loc := s.geo.Resolve(req.Phone, req.State, req.Zip)

	sel, err := s.api.NextDID(ctx, didapi.NextDIDRequest{
		CampaignID:    req.CampaignID,
		AgentID:       req.AgentID,
		CustomerPhone: req.Phone,
		Location:      loc,
	})
	if err != nil {
		log.Warn("selection failed, substituting fallback DID", "err", err)
		return Result{Number: s.fallbackDID, Fallback: true, Location: loc}, nil
	}

	cc := contextstore.CallContext{
		DIDID:          sel.DIDID,
		SelectedNumber: sel.Number,
		AgentID:        req.AgentID,
		SelectedAt:     s.clock().UTC(),
		Algorithm:      sel.Algorithm,
		Location:       loc,
		APIMetadata:    sel.Metadata,
	}
	if err := s.store.Put(ctx, req.CampaignID, req.Phone, cc); err != nil {
		// The selection is still good; the eventual report will just miss
		// its context and fall back to defaults.
		log.Error("context store write failed", "err", err)
	}

	return Result{Number: sel.Number, Algorithm: sel.Algorithm, Location: loc}, nil
}
