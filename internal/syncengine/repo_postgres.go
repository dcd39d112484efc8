package syncengine

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CallLogRepo abstracts the telephony platform's call-log table.
//
// Contract: rows come back in ascending uniqueid order, already filtered to
// completed calls (non-empty status, positive duration). Filtering and
// ordering MUST happen on the monotonic primary key; a timestamp-ordered
// scan on a large call-log table is orders of magnitude slower.
type CallLogRepo interface {
	// FetchAfter returns up to limit eligible rows with uniqueid strictly
	// greater than lastUniqueID. An empty lastUniqueID means first run:
	// fetch eligible rows with call_date at or after since instead.
	FetchAfter(ctx context.Context, lastUniqueID string, since time.Time, limit int) ([]CallLogRecord, error)
}

const callLogColumns = `uniqueid, lead_id, list_id, campaign_id, call_date,
	start_epoch, end_epoch, length_in_sec, status, phone_number,
	"user", term_reason, called_count`

// PostgresCallLogRepo reads the platform's call-log table. Read-only: no
// statement here may mutate platform data.
type PostgresCallLogRepo struct {
	db *sql.DB
}

func NewPostgresCallLogRepo(db *sql.DB) *PostgresCallLogRepo {
	return &PostgresCallLogRepo{db: db}
}

func (r *PostgresCallLogRepo) FetchAfter(ctx context.Context, lastUniqueID string, since time.Time, limit int) ([]CallLogRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if lastUniqueID != "" {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT %s
			FROM vicidial_log
			WHERE uniqueid > $1
			  AND status <> ''
			  AND length_in_sec > 0
			ORDER BY uniqueid ASC
			LIMIT $2`, callLogColumns), lastUniqueID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT %s
			FROM vicidial_log
			WHERE call_date >= $1
			  AND status <> ''
			  AND length_in_sec > 0
			ORDER BY uniqueid ASC
			LIMIT $2`, callLogColumns), since, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("syncengine: query call log: %w", err)
	}
	defer rows.Close()

	var out []CallLogRecord
	for rows.Next() {
		var (
			rec        CallLogRecord
			leadID     sql.NullInt64
			listID     sql.NullInt64
			agent      sql.NullString
			termReason sql.NullString
			called     sql.NullInt64
		)
		err := rows.Scan(
			&rec.UniqueID,
			&leadID,
			&listID,
			&rec.CampaignID,
			&rec.CallDate,
			&rec.StartEpoch,
			&rec.EndEpoch,
			&rec.DurationSeconds,
			&rec.Status,
			&rec.PhoneNumber,
			&agent,
			&termReason,
			&called,
		)
		if err != nil {
			return nil, fmt.Errorf("syncengine: scan call log row: %w", err)
		}
		rec.LeadID = leadID.Int64
		rec.ListID = listID.Int64
		rec.AgentID = agent.String
		rec.TermReason = termReason.String
		rec.CalledCount = int(called.Int64)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("syncengine: iterate call log: %w", err)
	}
	return out, nil
}
