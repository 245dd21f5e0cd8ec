package incidentdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// civiliansShotQuery mirrors original_source/src/agents/extract_node.py's
// CIVILIANS_SHOT query: the officer is the first-sequence officer involved,
// the civilian is the incident's victim (one victim row per incident).
const civiliansShotQuery = `
SELECT
	i.date_incident,
	i.incident_city,
	i.incident_county,
	o.name_first AS officer_first,
	o.name_last AS officer_last,
	c.name_first AS civilian_first,
	c.name_last AS civilian_last,
	v.civilian_died
FROM incidents_civilians_shot i
LEFT JOIN incident_civilians_shot_officers_involved oi
	ON i.incident_id = oi.incident_id AND oi.officer_sequence = 1
LEFT JOIN officers o ON oi.officer_id = o.officer_id
LEFT JOIN incident_civilians_shot_victims v
	ON i.incident_id = v.incident_id
LEFT JOIN civilians c ON v.civilian_id = c.civilian_id
WHERE i.incident_id = $1
LIMIT 1;`

// officersShotQuery mirrors the OFFICERS_SHOT query: the officer is the
// victim, the civilian is the first-sequence shooter.
const officersShotQuery = `
SELECT
	i.date_incident,
	i.incident_city,
	i.incident_county,
	o.name_first AS officer_first,
	o.name_last AS officer_last,
	c.name_first AS civilian_first,
	c.name_last AS civilian_last,
	v.officer_harm
FROM incidents_officers_shot i
LEFT JOIN incident_officers_shot_victims v
	ON i.incident_id = v.incident_id
LEFT JOIN officers o ON v.officer_id = o.officer_id
LEFT JOIN incident_officers_shot_shooters s
	ON i.incident_id = s.incident_id AND s.civilian_sequence = 1
LEFT JOIN civilians c ON s.civilian_id = c.civilian_id
WHERE i.incident_id = $1
LIMIT 1;`

// Lookup implements Repository for the TJI civilians_shot / officers_shot
// datasets, porting original_source/src/agents/extract_node.py's
// fetch_incident field mapping rules exactly. incidentID is parsed to the
// bigint the incidents_* tables declare it as (original_source does the
// equivalent int(state.incident_id) before querying) — pgx will not coerce
// a Go string into a bigint bind parameter.
func (c *Client) Lookup(ctx context.Context, incidentID string, dataset string) (*BaselineFields, error) {
	id, err := strconv.ParseInt(incidentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("incident id %q is not a valid integer: %w", incidentID, err)
	}

	switch dataset {
	case "CIVILIANS_SHOT":
		return c.lookupCiviliansShot(ctx, id, incidentID)
	case "OFFICERS_SHOT":
		return c.lookupOfficersShot(ctx, id, incidentID)
	default:
		return nil, fmt.Errorf("unknown dataset type %q", dataset)
	}
}

func (c *Client) lookupCiviliansShot(ctx context.Context, id int64, incidentID string) (*BaselineFields, error) {
	var (
		incidentDate                                           *time.Time
		city, county                                           *string
		officerFirst, officerLast, civilianFirst, civilianLast *string
		civilianDied                                           *bool
	)

	row := c.pool.QueryRow(ctx, civiliansShotQuery, id)
	err := row.Scan(&incidentDate, &city, &county, &officerFirst, &officerLast, &civilianFirst, &civilianLast, &civilianDied)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query civilians_shot incident %s: %w", incidentID, err)
	}

	severity := "unknown"
	if civilianDied != nil {
		if *civilianDied {
			severity = "fatal"
		} else {
			severity = "non-fatal"
		}
	}

	return &BaselineFields{
		OfficerName:  joinName(officerFirst, officerLast),
		CivilianName: joinName(civilianFirst, civilianLast),
		IncidentDate: incidentDate,
		Location:     preferCity(city, county),
		Severity:     severity,
	}, nil
}

func (c *Client) lookupOfficersShot(ctx context.Context, id int64, incidentID string) (*BaselineFields, error) {
	var (
		incidentDate                                           *time.Time
		city, county                                           *string
		officerFirst, officerLast, civilianFirst, civilianLast *string
		officerHarm                                            *string
	)

	row := c.pool.QueryRow(ctx, officersShotQuery, id)
	err := row.Scan(&incidentDate, &city, &county, &officerFirst, &officerLast, &civilianFirst, &civilianLast, &officerHarm)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query officers_shot incident %s: %w", incidentID, err)
	}

	severity := "unknown"
	if officerHarm != nil {
		switch *officerHarm {
		case "DEATH":
			severity = "fatal"
		case "INJURY":
			severity = "non-fatal"
		}
	}

	return &BaselineFields{
		OfficerName:  joinName(officerFirst, officerLast),
		CivilianName: joinName(civilianFirst, civilianLast),
		IncidentDate: incidentDate,
		Location:     preferCity(city, county),
		Severity:     severity,
	}, nil
}

// joinName joins first+last with a single space, or returns nil if both
// parts are empty — mirroring extract_node.py's " ".join([p for p in
// [first, last] if p]) behavior.
func joinName(first, last *string) *string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " ")
	return &joined
}

// preferCity mirrors extract_node.py's `city if city else county` fallback.
func preferCity(city, county *string) *string {
	if city != nil && *city != "" {
		return city
	}
	return county
}
