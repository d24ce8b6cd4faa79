package store

import "context"

// Interface is the full surface the facade depends on, mirroring the
// teacher's large MemoryDB interface: one seam between the composition
// layer and the concrete SQLite-backed implementation, so the facade can
// be tested against a fake without touching a real database.
type Interface interface {
	Close() error
	Health(ctx context.Context) error

	CreateTask(ctx context.Context, t Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetBoard(ctx context.Context, assignedAgent string, labels []string) (map[TaskStatus][]Task, error)
	UpdateTask(ctx context.Context, t Task) error
	CountInStatus(ctx context.Context, status TaskStatus) (int, error)

	AddComment(ctx context.Context, c Comment) error
	UpdateComment(ctx context.Context, id, content string, updatedAt int64) (Comment, error)
	GetComment(ctx context.Context, id string) (Comment, error)
	ListComments(ctx context.Context, taskID string) ([]Comment, error)

	AddBlocker(ctx context.Context, b Blocker) error
	GetBlocker(ctx context.Context, id string) (Blocker, error)
	ListBlockers(ctx context.Context, taskID string) ([]Blocker, error)
	ResolveBlocker(ctx context.Context, id string, resolvedAt int64) error
	CountUnresolvedBlockers(ctx context.Context, taskID string) (int, error)
	ClearBlockingTaskRefs(ctx context.Context, deletedTaskID string) error

	AddDependency(ctx context.Context, dep TaskDependency, maxDepth int) error
	RemoveDependency(ctx context.Context, id string) error
	RemoveDependenciesForTask(ctx context.Context, taskID string) error
	ListDependencies(ctx context.Context, taskID string) ([]TaskDependency, error)
	IsTaskReady(ctx context.Context, taskID string, maxDepth int) (bool, []string, error)

	SetWipLimit(ctx context.Context, w WipLimit) error
	GetWipLimit(ctx context.Context, status TaskStatus) (WipLimit, bool, error)
	ListWipLimits(ctx context.Context) ([]WipLimit, error)

	PostIntent(ctx context.Context, in Intent) error
	ListIntents(ctx context.Context, taskID string) ([]Intent, error)
	ListIntentsByAgent(ctx context.Context, agentID string) ([]Intent, error)
	ListIntentsByTaskAgent(ctx context.Context, taskID, agentID string) ([]Intent, error)
	HasIntentForFiles(ctx context.Context, agentID string, files []string) (bool, []string, error)
	CascadeDeleteIntents(ctx context.Context, taskID string) error

	CreateClaim(ctx context.Context, agentID string, files []string, ttlSeconds int, now int64) (*ClaimConflict, error)
	ReleaseClaims(ctx context.Context, agentID string, files []string) (int, error)
	ExtendClaims(ctx context.Context, agentID string, files []string, newExpiresAt int64) (int, error)
	ListActiveClaims(ctx context.Context, now int64) ([]AggregatedClaim, error)
	GetAgentClaims(ctx context.Context, agentID string, now int64) ([]Claim, error)

	AttachEvidence(ctx context.Context, e Evidence) error
	ListEvidence(ctx context.Context, taskID string) ([]Evidence, error)
	ListAllEvidence(ctx context.Context, limit int) ([]Evidence, error)
	ListEvidenceByTaskAgent(ctx context.Context, taskID, agentID string) ([]Evidence, error)
	HasEvidenceForTask(ctx context.Context, agentID string) (bool, []string, error)
	CascadeDeleteEvidence(ctx context.Context, taskID string) error

	LogChange(ctx context.Context, e ChangelogEntry) error
	SearchChangelog(ctx context.Context, f ChangelogFilter) ([]ChangelogEntry, error)
	GetFileHistory(ctx context.Context, filePath string, limit int) ([]ChangelogEntry, error)
	ListChangelogByTaskAgent(ctx context.Context, taskID, agentID string) ([]ChangelogEntry, error)
	NullifyTaskRef(ctx context.Context, taskID string) error
	DistinctAgentsForTask(ctx context.Context, taskID string) ([]string, error)

	RegisterOrHeartbeat(ctx context.Context, agentID string, capabilities []string, metadata map[string]string, now int64) (Agent, error)
	GetAgent(ctx context.Context, agentID string) (Agent, error)
	ListAgents(ctx context.Context) ([]Agent, error)
	HasInProgressTask(ctx context.Context, agentID string) (bool, error)

	UpsertTaskTemplate(ctx context.Context, t TaskTemplate) error
	GetTaskTemplate(ctx context.Context, name string) (TaskTemplate, error)
	ListTaskTemplates(ctx context.Context) ([]TaskTemplate, error)
	DeleteTaskTemplate(ctx context.Context, name string) error

	CreateWebhook(ctx context.Context, w Webhook) error
	ListWebhooks(ctx context.Context) ([]Webhook, error)
	DeleteWebhook(ctx context.Context, id string) error
	RecordWebhookDelivery(ctx context.Context, d WebhookDelivery) error
	ListWebhookDeliveries(ctx context.Context, webhookID string, limit int) ([]WebhookDelivery, error)
}

var _ Interface = (*Store)(nil)
