package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

const opportunitySelect = `
	SELECT id, tenant_id, account_id, signal_id, title, description, narrative,
		key_points, action_items, stakeholder_hints, theme, status, score, breakdown,
		feedback_penalty, source_reliability, draft_outreach, crm_status, crm_records,
		assigned_to, version, workflow_run_id, created_at, updated_at
	FROM opportunities
`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type opportunityColumns struct {
	keyPoints        string
	actionItems      string
	stakeholderHints string
	breakdown        string
	draftOutreach    string
	crmRecords       string
}

func marshalOpportunityColumns(opp *entities.Opportunity) (*opportunityColumns, error) {
	cols := &opportunityColumns{}
	fields := []struct {
		name string
		v    any
		dst  *string
	}{
		{"key_points", opp.KeyPoints, &cols.keyPoints},
		{"action_items", opp.ActionItems, &cols.actionItems},
		{"stakeholder_hints", opp.StakeholderHints, &cols.stakeholderHints},
		{"breakdown", opp.Breakdown, &cols.breakdown},
		{"draft_outreach", opp.DraftOutreach, &cols.draftOutreach},
		{"crm_records", opp.CRMRecords, &cols.crmRecords},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.v)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", f.name, err)
		}
		*f.dst = string(data)
	}
	return cols, nil
}

func scanOpportunity(row rowScanner) (*entities.Opportunity, error) {
	var (
		opp                                                                   entities.Opportunity
		status                                                                string
		keyPoints, actionItems, stakeholderHints, breakdown, outreach, crmRec string
	)
	err := row.Scan(
		&opp.ID, &opp.TenantID, &opp.AccountID, &opp.SignalID, &opp.Title, &opp.Description, &opp.Narrative,
		&keyPoints, &actionItems, &stakeholderHints, &opp.Theme, &status, &opp.Score, &breakdown,
		&opp.FeedbackPenalty, &opp.SourceReliability, &outreach, &opp.CRMStatus, &crmRec,
		&opp.AssignedTo, &opp.Version, &opp.WorkflowRunID, &opp.CreatedAt, &opp.UpdatedAt)
	if err != nil {
		return nil, err
	}

	opp.Status = entities.OpportunityStatus(status)
	columns := []struct {
		name string
		data string
		dst  any
	}{
		{"key_points", keyPoints, &opp.KeyPoints},
		{"action_items", actionItems, &opp.ActionItems},
		{"stakeholder_hints", stakeholderHints, &opp.StakeholderHints},
		{"breakdown", breakdown, &opp.Breakdown},
		{"draft_outreach", outreach, &opp.DraftOutreach},
		{"crm_records", crmRec, &opp.CRMRecords},
	}
	for _, c := range columns {
		if c.data == "" || c.data == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(c.data), c.dst); err != nil {
			return nil, fmt.Errorf("unmarshaling %s: %w", c.name, err)
		}
	}
	return &opp, nil
}

func scanSignal(row rowScanner) (*entities.Signal, error) {
	var (
		signal             entities.Signal
		sourceType, status string
		themes             string
	)
	err := row.Scan(
		&signal.ID, &signal.TenantID, &signal.AccountID, &signal.Title, &signal.Description,
		&sourceType, &signal.SourceURL, &signal.SearchTerm, &themes, &status,
		&signal.CreatedAt, &signal.UpdatedAt)
	if err != nil {
		return nil, err
	}

	signal.SourceType = entities.SourceType(sourceType)
	signal.WorkflowStatus = entities.SignalStatus(status)
	if themes != "" && themes != "null" {
		if err := json.Unmarshal([]byte(themes), &signal.Themes); err != nil {
			return nil, fmt.Errorf("unmarshaling themes: %w", err)
		}
	}
	return &signal, nil
}
