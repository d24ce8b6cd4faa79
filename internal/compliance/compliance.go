// Package compliance is a pure, read-only derivation over intents,
// evidence, changelog, and claims: it never writes to the store. Given a
// (task, agent) pair it reports whether the agent's declared intent,
// boundaries, and evidence line up with what it actually touched.
package compliance

import (
	"context"
	"fmt"

	"github.com/scrumhq/scrum/internal/store"
)

// Check is one named pass/fail condition inside a Report.
type Check struct {
	Passed bool
	Detail string
}

// Report is the full compliance derivation for a single (taskID, agentID).
type Report struct {
	TaskID              string
	AgentID             string
	IntentPosted        Check
	EvidenceAttached     Check
	FilesMatch          Check
	BoundariesRespected Check
	ClaimsReleased      Check
	Undeclared          []string
	Unmodified          []string
	Violations          []string
	Score               int
	Compliant           bool
	CanComplete         bool
}

// Checker runs compliance derivations against a store.Interface.
type Checker struct {
	store store.Interface
}

// New returns a Checker bound to the given store.
func New(s store.Interface) *Checker {
	return &Checker{store: s}
}

// Check derives the full Report for (taskID, agentID). It issues
// only read queries.
func (c *Checker) Check(ctx context.Context, taskID, agentID string, now int64) (Report, error) {
	r := Report{TaskID: taskID, AgentID: agentID}

	intents, err := c.store.ListIntentsByTaskAgent(ctx, taskID, agentID)
	if err != nil {
		return Report{}, fmt.Errorf("load intents: %w", err)
	}
	if len(intents) > 0 {
		r.IntentPosted = Check{Passed: true, Detail: fmt.Sprintf("%d intent(s) posted", len(intents))}
	} else {
		r.IntentPosted = Check{Passed: false, Detail: "no intent posted for this task by this agent"}
	}

	evidence, err := c.store.ListEvidenceByTaskAgent(ctx, taskID, agentID)
	if err != nil {
		return Report{}, fmt.Errorf("load evidence: %w", err)
	}
	if len(evidence) > 0 {
		r.EvidenceAttached = Check{Passed: true, Detail: fmt.Sprintf("%d evidence entr(ies) attached", len(evidence))}
	} else {
		r.EvidenceAttached = Check{Passed: false, Detail: "no evidence attached for this task by this agent"}
	}

	declared := map[string]bool{}
	var boundaries []string
	for _, in := range intents {
		for _, f := range in.Files {
			declared[f] = true
		}
		if in.Boundaries != "" {
			boundaries = append(boundaries, ParseBoundaries(in.Boundaries)...)
		}
	}

	changelog, err := c.store.ListChangelogByTaskAgent(ctx, taskID, agentID)
	if err != nil {
		return Report{}, fmt.Errorf("load changelog: %w", err)
	}
	modified := map[string]bool{}
	for _, e := range changelog {
		modified[e.FilePath] = true
	}

	var undeclared, unmodified []string
	for f := range modified {
		if !declared[f] {
			undeclared = append(undeclared, f)
		}
	}
	for f := range declared {
		if !modified[f] {
			unmodified = append(unmodified, f)
		}
	}
	r.Undeclared = undeclared
	r.Unmodified = unmodified
	if len(undeclared) == 0 {
		r.FilesMatch = Check{Passed: true, Detail: "every modified file was declared in an intent"}
	} else {
		r.FilesMatch = Check{Passed: false, Detail: fmt.Sprintf("modified without declared intent: %v", undeclared)}
	}

	var violations []string
	for f := range modified {
		for _, p := range boundaries {
			if MatchBoundary(f, p) {
				violations = append(violations, f)
				break
			}
		}
	}
	r.Violations = violations
	if len(violations) == 0 {
		r.BoundariesRespected = Check{Passed: true, Detail: "no modified file fell inside a declared boundary"}
	} else {
		r.BoundariesRespected = Check{Passed: false, Detail: fmt.Sprintf("modified files inside declared boundaries: %v", violations)}
	}

	claims, err := c.store.GetAgentClaims(ctx, agentID, now)
	if err != nil {
		return Report{}, fmt.Errorf("load claims: %w", err)
	}
	if len(claims) == 0 {
		r.ClaimsReleased = Check{Passed: true, Detail: "no outstanding claims"}
	} else {
		r.ClaimsReleased = Check{Passed: false, Detail: fmt.Sprintf("%d claim(s) still held", len(claims))}
	}

	r.Score = scoreOf(r)
	r.Compliant = r.Score >= 70
	r.CanComplete = r.IntentPosted.Passed && r.EvidenceAttached.Passed && r.FilesMatch.Passed && r.BoundariesRespected.Passed
	return r, nil
}

func scoreOf(r Report) int {
	score := 0
	if r.IntentPosted.Passed {
		score += 20
	}
	if r.EvidenceAttached.Passed {
		score += 20
	}
	if r.FilesMatch.Passed {
		score += 30
	}
	if r.BoundariesRespected.Passed {
		score += 20
	}
	if r.ClaimsReleased.Passed {
		score += 10
	}
	return score
}
