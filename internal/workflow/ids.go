package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func newID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewSignalID generates a fresh signal id.
func NewSignalID() string { return newID("sig") }

// NewOpportunityID generates a fresh opportunity id.
func NewOpportunityID() string { return newID("opp") }

// StableSignalID derives a deterministic signal id from the tenant, account
// and source URL so a monitoring sweep that rediscovers the same article
// cannot ingest it twice.
func StableSignalID(tenantID, accountID, sourceURL string) string {
	sum := sha256.Sum256([]byte(tenantID + "|" + accountID + "|" + sourceURL))
	return "sig-" + hex.EncodeToString(sum[:])[:12]
}

// IngestionRunID is the run id for one signal's ingestion.
func IngestionRunID(signalID string) string {
	return "ingestion-" + signalID
}

// DiscoveryRunID is the run id for one signal's discovery.
func DiscoveryRunID(signalID string) string {
	return "discovery-" + signalID
}

// ReviewRunID is the stable run id a decision submitter targets. It is
// derivable from identifiers the reviewer already has.
func ReviewRunID(tenantID, accountID, opportunityID string) string {
	return fmt.Sprintf("review-%s-%s-%s", tenantID, accountID, opportunityID)
}

// ActivationRunID is the run id for one opportunity's activation.
func ActivationRunID(opportunityID string) string {
	return "activation-" + opportunityID
}

// MonitoringRunID is the run id for one account's monitoring sweep.
func MonitoringRunID(tenantID, accountID string) string {
	return fmt.Sprintf("monitor-%s-%s", tenantID, accountID)
}
