package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/store"
)

// CreateClaimInput is the validated request shape for CreateClaim.
type CreateClaimInput struct {
	AgentID    string
	Files      []string
	TTLSeconds int
}

// CreateClaim runs the full protocol in order: validate inputs, require
// the agent has posted intent covering every file, clamp the TTL, then
// hand off to the store's atomic conflict-check-and-insert.
func (f *Facade) CreateClaim(ctx context.Context, in CreateClaimInput) ([]store.Claim, error) {
	if in.AgentID == "" {
		return nil, validationError("agentId is required", nil)
	}
	if len(in.Files) == 0 {
		return nil, validationError("files must not be empty", nil)
	}

	has, missing, err := f.HasIntentForFiles(ctx, in.AgentID, in.Files)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, preconditionError(ReasonNoIntent, "agent has not declared intent for every requested file", map[string]any{"missingFiles": missing})
	}

	ttl := in.TTLSeconds
	if ttl <= 0 {
		ttl = f.cfg.DefaultClaimTTLSeconds
	}
	if ttl < f.cfg.MinClaimTTLSeconds {
		ttl = f.cfg.MinClaimTTLSeconds
	}
	if ttl > f.cfg.MaxClaimTTLSeconds {
		ttl = f.cfg.MaxClaimTTLSeconds
	}

	now := f.now()
	conflict, err := f.store.CreateClaim(ctx, in.AgentID, in.Files, ttl, now)
	if err != nil {
		return nil, internalError("create claim", err)
	}
	if conflict != nil {
		f.publish(events.EventClaimConflict, in.AgentID, map[string]any{"files": in.Files, "conflictsWith": conflict.ConflictsWith})
		return nil, conflictError(ReasonClaimConflict, "one or more files are already claimed", map[string]any{"files": in.Files, "conflictsWith": conflict.ConflictsWith})
	}

	// Claim creation is bus-scoped, not changelog-scoped (spec.md §3's
	// closed change_type vocabulary has no claim entries).
	f.publish(events.EventClaimCreated, in.AgentID, map[string]any{"files": in.Files, "ttlSeconds": ttl})

	claims, err := f.store.GetAgentClaims(ctx, in.AgentID, now)
	if err != nil {
		return nil, internalError("get agent claims", err)
	}
	return claims, nil
}

// ReleaseClaims releases some or all of agentID's claims. files empty
// releases everything held by the agent. Release requires the agent to
// have attached evidence, and every task it has evidence on must show no
// undeclared file modification and no boundary violation; the other
// compliance checks are not applied here.
func (f *Facade) ReleaseClaims(ctx context.Context, agentID string, files []string) (int, error) {
	if agentID == "" {
		return 0, validationError("agentId is required", nil)
	}

	has, taskIDs, err := f.HasEvidenceForTask(ctx, agentID)
	if err != nil {
		return 0, err
	}
	if !has {
		return 0, preconditionError(ReasonNoEvidence, "agent has not attached any evidence", nil)
	}

	now := f.now()
	for _, taskID := range taskIDs {
		report, err := f.compliance.Check(ctx, taskID, agentID, now)
		if err != nil {
			return 0, internalError("compliance check", err)
		}
		if !report.FilesMatch.Passed || !report.BoundariesRespected.Passed {
			reason := ReasonComplianceFailed
			if !report.BoundariesRespected.Passed {
				reason = ReasonBoundaryViolation
			}
			return 0, preconditionError(reason, "compliance violations must be resolved before releasing claims", map[string]any{"taskId": taskID, "report": report})
		}
	}

	released, err := f.store.ReleaseClaims(ctx, agentID, files)
	if err != nil {
		return 0, internalError("release claims", err)
	}

	f.publish(events.EventClaimReleased, agentID, map[string]any{"files": files, "released": released})
	return released, nil
}

// ExtendClaims sets the expiry on some or all of agentID's claims to now
// plus additionalSeconds, clamped to the configured claim TTL bounds.
func (f *Facade) ExtendClaims(ctx context.Context, agentID string, files []string, additionalSeconds int) (int, error) {
	if agentID == "" {
		return 0, validationError("agentId is required", nil)
	}
	seconds := additionalSeconds
	if seconds <= 0 {
		seconds = f.cfg.ClaimExtendDefaultSeconds
	}
	if seconds < f.cfg.MinClaimTTLSeconds {
		seconds = f.cfg.MinClaimTTLSeconds
	}
	if seconds > f.cfg.MaxClaimTTLSeconds {
		seconds = f.cfg.MaxClaimTTLSeconds
	}

	now := f.now()
	newExpiresAt := now + int64(seconds)*1000
	extended, err := f.store.ExtendClaims(ctx, agentID, files, newExpiresAt)
	if err != nil {
		return 0, internalError("extend claims", err)
	}
	f.publish(events.EventClaimExtended, agentID, map[string]any{"files": files, "extendedCount": extended, "newExpiresAt": newExpiresAt})
	return extended, nil
}

// ListActiveClaims returns the per-agent aggregated view of every live
// claim.
func (f *Facade) ListActiveClaims(ctx context.Context) ([]store.AggregatedClaim, error) {
	claims, err := f.store.ListActiveClaims(ctx, f.now())
	if err != nil {
		return nil, internalError("list active claims", err)
	}
	return claims, nil
}

// GetAgentClaims returns agentID's current live claims.
func (f *Facade) GetAgentClaims(ctx context.Context, agentID string) ([]store.Claim, error) {
	claims, err := f.store.GetAgentClaims(ctx, agentID, f.now())
	if err != nil {
		return nil, internalError("get agent claims", err)
	}
	return claims, nil
}

// CheckOverlap reports, for each requested file, which agent (if any)
// currently holds an active claim on it. It performs no writes and is
// safe to call before deciding whether to post an intent.
func (f *Facade) CheckOverlap(ctx context.Context, files []string) (map[string]string, error) {
	active, err := f.ListActiveClaims(ctx)
	if err != nil {
		return nil, err
	}
	holders := map[string]string{}
	for _, agg := range active {
		for _, file := range agg.Files {
			holders[file] = agg.AgentID
		}
	}
	overlap := map[string]string{}
	for _, f := range files {
		if holder, ok := holders[f]; ok {
			overlap[f] = holder
		}
	}
	return overlap, nil
}
