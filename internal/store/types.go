package store

// TaskStatus is the closed vocabulary of kanban board lanes.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// BoardStatuses is the five non-cancelled lanes getBoard projects, in
// display order.
var BoardStatuses = []TaskStatus{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Priority is the closed vocabulary of task priorities, ordered highest
// first for board sorting.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// priorityRank gives each priority a descending sort weight.
var priorityRank = map[Priority]int{
	PriorityCritical: 4,
	PriorityHigh:     3,
	PriorityMedium:   2,
	PriorityLow:      1,
}

// ChangeType is the closed vocabulary for changelog entries: three file
// mutations plus ten task-lifecycle events. Intent/claim/evidence/agent
// operations are not changelog-scoped — they are reported only on the
// event bus (see facade's publish calls), so this list never grows
// beyond what the specification enumerates.
type ChangeType string

const (
	ChangeFileCreate         ChangeType = "create"
	ChangeFileModify         ChangeType = "modify"
	ChangeFileDelete         ChangeType = "delete"
	ChangeTaskCreated        ChangeType = "task_created"
	ChangeTaskStatusChange   ChangeType = "task_status_change"
	ChangeTaskAssigned       ChangeType = "task_assigned"
	ChangeTaskPriorityChange ChangeType = "task_priority_change"
	ChangeTaskCompleted      ChangeType = "task_completed"
	ChangeBlockerAdded       ChangeType = "blocker_added"
	ChangeBlockerResolved    ChangeType = "blocker_resolved"
	ChangeDependencyAdded    ChangeType = "dependency_added"
	ChangeDependencyRemoved  ChangeType = "dependency_removed"
	ChangeCommentAdded       ChangeType = "comment_added"
)

// FileChangeTypes is the subset of ChangeType that represents an actual
// file mutation, as opposed to a task-lifecycle event.
var FileChangeTypes = map[ChangeType]bool{
	ChangeFileCreate: true,
	ChangeFileModify: true,
	ChangeFileDelete: true,
}

// AgentStatus is the derived liveness of a registered agent.
type AgentStatus string

const (
	AgentActive  AgentStatus = "active"
	AgentIdle    AgentStatus = "idle"
	AgentOffline AgentStatus = "offline"
)

// Task is the core unit of work.
type Task struct {
	ID             string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	AssignedAgent  string
	DueDate        *int64
	Labels         []string
	StoryPoints    *int
	CreatedAt      int64
	StartedAt      *int64
	CompletedAt    *int64
	UpdatedAt      int64
}

// Comment is a plain-text note attached to a task.
type Comment struct {
	ID        string
	TaskID    string
	AgentID   string
	Content   string
	CreatedAt int64
	UpdatedAt *int64
}

// Blocker records an impediment on a task, optionally pointing at
// another task that must resolve first.
type Blocker struct {
	ID              string
	TaskID          string
	Description     string
	BlockingTaskID  string // empty if none, or cleared on cascade
	ResolvedAt      *int64
	CreatedAt       int64
	AgentID         string
}

// TaskDependency is a directed depends_on edge: TaskID depends on
// DependsOnTaskID.
type TaskDependency struct {
	ID              string
	TaskID          string
	DependsOnTaskID string
	CreatedAt       int64
}

// Intent is an agent's declaration of intended files, boundaries, and
// acceptance criteria for a task. Immutable once created.
type Intent struct {
	ID                 string
	TaskID             string
	AgentID            string
	Files              []string
	Boundaries         string
	AcceptanceCriteria string
	CreatedAt          int64
}

// Claim is a single (agentID, filePath) lease row.
type Claim struct {
	AgentID   string
	FilePath  string
	ExpiresAt int64
	CreatedAt int64
}

// AggregatedClaim is the per-agent view of claims callers see.
type AggregatedClaim struct {
	AgentID   string
	Files     []string
	ExpiresAt int64
	CreatedAt int64
}

// Evidence is an append-only command/output artifact.
type Evidence struct {
	ID        string
	TaskID    string
	AgentID   string
	Command   string
	Output    string
	CreatedAt int64
}

// ChangelogEntry is an append-only audit row.
type ChangelogEntry struct {
	ID           string
	TaskID       string // empty if nullified or never task-scoped
	AgentID      string
	FilePath     string
	ChangeType   ChangeType
	Summary      string
	DiffSnippet  string
	CommitHash   string
	CreatedAt    int64
}

// Agent is the registry row for a coding agent.
type Agent struct {
	AgentID       string
	Capabilities  []string
	Metadata      map[string]string
	LastHeartbeat int64
	RegisteredAt  int64
}

// WipLimit bounds the number of non-cancelled tasks in a status.
type WipLimit struct {
	Status    TaskStatus
	MaxTasks  int
	UpdatedAt int64
}

// TaskTemplate is a reusable task shape.
type TaskTemplate struct {
	Name                string
	TitlePattern        string
	DefaultLabels       []string
	DefaultPriority     Priority
	DefaultAcceptance   string
	CreatedAt           int64
	UpdatedAt           int64
}

// Webhook is an out-of-process event sink registration, layered over
// the event bus.
type Webhook struct {
	ID         string
	URL        string
	EventTypes []string // empty means all types
	CreatedAt  int64
}

// WebhookDelivery records one delivery attempt for auditing.
type WebhookDelivery struct {
	ID          string
	WebhookID   string
	EventType   string
	StatusCode  int
	Error       string
	Attempt     int
	DeliveredAt *int64
	CreatedAt   int64
}

// TaskFilter narrows listTasks/getBoard results.
type TaskFilter struct {
	Status        TaskStatus
	AssignedAgent string
	Labels        []string
	Limit         int
}

// ChangelogFilter narrows searchChangelog results.
type ChangelogFilter struct {
	FilePath   string
	AgentID    string
	TaskID     string
	ChangeType ChangeType
	Since      *int64
	Until      *int64
	Query      string
	Limit      int
}
