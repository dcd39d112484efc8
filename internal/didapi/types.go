package didapi

import (
	"fmt"
	"strconv"

	"did-optimizer/internal/geo"
)

// NextDIDRequest carries everything the remote service wants to know about
// the call before handing out a caller ID. Optional fields are sent only
// when present.
type NextDIDRequest struct {
	CampaignID    string
	AgentID       string
	CustomerPhone string
	Location      geo.Tuple
}

// Selection is the canonical result of a successful next-DID call,
// regardless of which historical response shape the server used.
type Selection struct {
	DIDID     string
	Number    string
	Algorithm string

	// Metadata keeps the remaining response fields opaque for later
	// correlation; the client never interprets them.
	Metadata map[string]any
}

// CallResult is the outcome payload posted back for analytics/training.
// Field names follow the remote contract verbatim (mixed casing included).
type CallResult struct {
	PhoneNumber   string `json:"phoneNumber"`
	CampaignID    string `json:"campaign_id"`
	AgentID       string `json:"agent_id"`
	CustomerPhone string `json:"customer_phone"`
	Result        string `json:"result"`
	Duration      int    `json:"duration"`
	Disposition   string `json:"disposition"`
}

// selectionEnvelope accepts both response shapes the service has shipped:
// the current {success, did:{id, number, algorithm, ...}} and the legacy
// {success, data:{phoneNumber, algorithm, ...}}.
type selectionEnvelope struct {
	Success *bool          `json:"success"`
	Did     map[string]any `json:"did"`
	Data    map[string]any `json:"data"`
}

func (e selectionEnvelope) ok() bool {
	return e.Success != nil && *e.Success
}

// toSelection normalizes whichever shape arrived into a Selection.
func (e selectionEnvelope) toSelection() (Selection, error) {
	switch {
	case e.Did != nil:
		number, _ := e.Did["number"].(string)
		if number == "" {
			return Selection{}, fmt.Errorf("did shape missing number")
		}
		out := Selection{Number: number, Metadata: map[string]any{}}
		out.Algorithm, _ = e.Did["algorithm"].(string)
		out.DIDID = stringish(e.Did["id"])
		for k, v := range e.Did {
			switch k {
			case "number", "algorithm", "id":
			default:
				out.Metadata[k] = v
			}
		}
		return out, nil

	case e.Data != nil:
		number, _ := e.Data["phoneNumber"].(string)
		if number == "" {
			return Selection{}, fmt.Errorf("data shape missing phoneNumber")
		}
		out := Selection{Number: number, Metadata: map[string]any{}}
		out.Algorithm, _ = e.Data["algorithm"].(string)
		out.DIDID = stringish(e.Data["didId"])
		for k, v := range e.Data {
			switch k {
			case "phoneNumber", "algorithm", "didId":
			default:
				out.Metadata[k] = v
			}
		}
		return out, nil
	}
	return Selection{}, fmt.Errorf("response carries neither did nor data")
}

// stringish tolerates servers sending ids as numbers.
func stringish(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

type resultEnvelope struct {
	Success *bool `json:"success"`
}
