package reporter

import (
	"context"
	"errors"

	"did-optimizer/internal/contextstore"
	"did-optimizer/internal/didapi"
	"did-optimizer/pkg/logger"
)

var ErrInvalidArgument = errors.New("reporter: invalid argument")

// unknownAgent is reported when no selection context exists for the call.
const unknownAgent = "UNKNOWN"

// ResultPoster is the slice of the remote API the reporting path needs.
type ResultPoster interface {
	PostCallResult(ctx context.Context, res didapi.CallResult) error
}

// Request is one completed call outcome to deliver upstream.
type Request struct {
	CampaignID      string `json:"campaign_id"`
	Phone           string `json:"phone"`
	Result          string `json:"result"`
	DurationSeconds int    `json:"duration_seconds"`
	Disposition     string `json:"disposition"`
}

// Service merges a call outcome with its stored selection context (if any)
// and delivers it to the remote API. A missing context is normal: the
// report still goes out with the fallback DID and an unknown agent.
type Service struct {
	api         ResultPoster
	store       contextstore.Store
	fallbackDID string
}

func NewService(api ResultPoster, store contextstore.Store, fallbackDID string) *Service {
	return &Service{api: api, store: store, fallbackDID: fallbackDID}
}

func (s *Service) Report(ctx context.Context, req Request) error {
	if req.CampaignID == "" || req.Phone == "" {
		return ErrInvalidArgument
	}

	log := logger.From(ctx).With("campaign_id", req.CampaignID, "phone", req.Phone)

	cc, found, err := s.store.TakeAndDelete(ctx, req.CampaignID, req.Phone)
	if err != nil {
		// Store trouble must not block reporting; proceed as if absent.
		log.Error("context store read failed", "err", err)
		found = false
	}

	out := didapi.CallResult{
		PhoneNumber:   s.fallbackDID,
		CampaignID:    req.CampaignID,
		AgentID:       unknownAgent,
		CustomerPhone: req.Phone,
		Result:        req.Result,
		Duration:      req.DurationSeconds,
		Disposition:   req.Disposition,
	}
	if found {
		if cc.SelectedNumber != "" {
			out.PhoneNumber = cc.SelectedNumber
		}
		if cc.AgentID != "" {
			out.AgentID = cc.AgentID
		}
	} else {
		log.Debug("no selection context for call, reporting with fallback fields")
	}

	if err := s.api.PostCallResult(ctx, out); err != nil {
		return err
	}
	return nil
}
