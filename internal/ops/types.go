package ops

import (
	"errors"
	"time"

	"cardops.org/internal/cards"
)

var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidTransition = errors.New("invalid card request transition")
	ErrUnknownReportType = errors.New("unknown report type")
	ErrInvalidPeriod     = errors.New("invalid statement period")
)

// MerchantCategory is a merchant classification code (MCC-style).
type MerchantCategory struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	Description      string `json:"description"`
	BlockedByDefault bool   `json:"blocked_by_default"`
}

// MerchantCategoryPatch carries partial updates; nil fields are left alone.
type MerchantCategoryPatch struct {
	Name             *string
	Code             *string
	Description      *string
	BlockedByDefault *bool
}

// PolicyRuleType enumerates the constraint families a rule can express.
type PolicyRuleType string

const (
	RuleLimit               PolicyRuleType = "limit"
	RuleCategoryBlock       PolicyRuleType = "category_block"
	RuleTimeRestriction     PolicyRuleType = "time_restriction"
	RuleGeoRestriction      PolicyRuleType = "geo_restriction"
	RuleTransactionApproval PolicyRuleType = "transaction_approval"
)

// RuleScope picks which cards or holders a rule applies to.
type RuleScope string

const (
	ScopeAllCards        RuleScope = "all_cards"
	ScopeSpecificCards   RuleScope = "specific_cards"
	ScopeSpecificHolders RuleScope = "specific_holders"
)

// PolicyRule is a named spend constraint. Lower Priority wins when several
// rules apply to the same card; ties keep insertion order.
type PolicyRule struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Type          PolicyRuleType `json:"type"`
	IsActive      bool           `json:"is_active"`
	Priority      int            `json:"priority"`
	Configuration map[string]any `json:"configuration"`
	AppliesTo     RuleScope      `json:"applies_to"`
	TargetIDs     []string       `json:"target_ids,omitempty"`
}

type PolicyRulePatch struct {
	Name          *string
	Description   *string
	Type          *PolicyRuleType
	IsActive      *bool
	Priority      *int
	Configuration map[string]any
	AppliesTo     *RuleScope
	TargetIDs     []string
}

// RequestType is what the holder is asking for.
type RequestType string

const (
	RequestNewCard         RequestType = "new_card"
	RequestLimitIncrease   RequestType = "limit_increase"
	RequestFreezeUnfreeze  RequestType = "freeze_unfreeze"
	RequestCardReplacement RequestType = "card_replacement"
	RequestCloseCard       RequestType = "close_card"
)

// RequestStatus moves only forward: pending -> approved|rejected,
// approved -> completed.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

// RequestDetails is the free-form payload attached to a card request.
type RequestDetails struct {
	CardHolderName string     `json:"card_holder_name,omitempty"`
	CardType       string     `json:"card_type,omitempty"`
	Limit          float64    `json:"limit,omitempty"`
	Reason         string     `json:"reason"`
	Currency       string     `json:"currency,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	ExistingCardID string     `json:"existing_card_id,omitempty"`
}

// CardRequest is a workflow item requiring approval.
type CardRequest struct {
	ID            string         `json:"id"`
	RequestorID   string         `json:"requestor_id"`
	RequestType   RequestType    `json:"request_type"`
	Status        RequestStatus  `json:"status"`
	RequestedDate time.Time      `json:"requested_date"`
	ApprovedBy    string         `json:"approved_by,omitempty"`
	ApprovalDate  *time.Time     `json:"approval_date,omitempty"`
	Details       RequestDetails `json:"details"`
	Notes         string         `json:"notes,omitempty"`
}

// VirtualCard is an ephemeral single-purpose card derived from (or
// independent of) a physical one.
type VirtualCard struct {
	cards.Card
	ParentCardID      string     `json:"parent_card_id,omitempty"`
	IsSingleUse       bool       `json:"is_single_use"`
	Expiration        time.Time  `json:"expiration"`
	Purpose           string     `json:"purpose"`
	GenerationDate    time.Time  `json:"generation_date"`
	AutoTerminateDate *time.Time `json:"auto_terminate_date,omitempty"`
}

type VirtualCardPatch struct {
	HolderName        *string
	Balance           *float64
	Limit             *float64
	Status            *cards.CardStatus
	Frozen            *bool
	IsSingleUse       *bool
	Expiration        *time.Time
	Purpose           *string
	AutoTerminateDate *time.Time
}

// AuditTargetType names what an audit entry refers to.
type AuditTargetType string

const (
	AuditTargetCard        AuditTargetType = "card"
	AuditTargetCardRequest AuditTargetType = "card_request"
	AuditTargetPolicy      AuditTargetType = "policy"
	AuditTargetUser        AuditTargetType = "user"
	AuditTargetVirtualCard AuditTargetType = "virtual_card"
)

// AuditLogEntry is append-only. Timestamp and ID are store-assigned and the
// entry never changes afterwards. TargetID is not validated against any
// collection.
type AuditLogEntry struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	ActorID     string          `json:"actor_id"`
	Action      string          `json:"action"`
	TargetType  AuditTargetType `json:"target_type"`
	TargetID    string          `json:"target_id"`
	OldValue    any             `json:"old_value,omitempty"`
	NewValue    any             `json:"new_value,omitempty"`
	Description string          `json:"description"`
}

// Permissions are independent capability flags; no hierarchy is implied and
// multi-profile union is the caller's job.
type Permissions struct {
	ViewAllCards          bool `json:"can_view_all_cards"`
	ManageOwnCards        bool `json:"can_manage_own_cards"`
	ManageTeamCards       bool `json:"can_manage_team_cards"`
	ManageAllCards        bool `json:"can_manage_all_cards"`
	CreateCards           bool `json:"can_create_cards"`
	ApproveRequests       bool `json:"can_approve_requests"`
	ManagePolicies        bool `json:"can_manage_policies"`
	ViewAuditLogs         bool `json:"can_view_audit_logs"`
	ManageUserPermissions bool `json:"can_manage_user_permissions"`
	AccessReporting       bool `json:"can_access_reporting"`
	ManageIntegrations    bool `json:"can_manage_integrations"`
}

// PermissionProfile groups capability flags under a name.
type PermissionProfile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions Permissions `json:"permissions"`
}

type PermissionProfilePatch struct {
	Name        *string
	Description *string
	Permissions *Permissions
}

// AlertType enumerates the conditions an alert can watch.
type AlertType string

const (
	AlertSpendingThreshold  AlertType = "spending_threshold"
	AlertUnusualTransaction AlertType = "unusual_transaction"
	AlertPolicyViolation    AlertType = "policy_violation"
	AlertCardStatusChange   AlertType = "card_status_change"
	AlertLowBalance         AlertType = "low_balance"
)

// AlertConfiguration describes one notification rule. Configurations are not
// deduplicated; several may fire for the same event.
type AlertConfiguration struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        AlertType `json:"type"`
	Threshold   float64   `json:"threshold,omitempty"`
	Period      string    `json:"period,omitempty"`
	TargetCards []string  `json:"target_cards,omitempty"`
	TargetUsers []string  `json:"target_users,omitempty"`
	Channels    []string  `json:"channels"`
	IsActive    bool      `json:"is_active"`
}

type AlertConfigurationPatch struct {
	Name        *string
	Description *string
	Type        *AlertType
	Threshold   *float64
	Period      *string
	TargetCards []string
	TargetUsers []string
	Channels    []string
	IsActive    *bool
}

// BillingCycle is how often a subscription charges.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleAnnually  BillingCycle = "annually"
)

// SubscriptionStatus is the lifecycle of a recurring charge.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPaused    SubscriptionStatus = "paused"
)

// Subscription is a recurring charge billed to a card. NextBillingDate is
// never advanced by the store itself; the billing scheduler owns that.
type Subscription struct {
	ID              string             `json:"id"`
	CardID          string             `json:"card_id"`
	MerchantName    string             `json:"merchant_name"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	BillingCycle    BillingCycle       `json:"billing_cycle"`
	NextBillingDate time.Time          `json:"next_billing_date"`
	Status          SubscriptionStatus `json:"status"`
	Category        string             `json:"category"`
	StartDate       time.Time          `json:"start_date"`
	Notes           string             `json:"notes,omitempty"`
}

type SubscriptionPatch struct {
	CardID          *string
	MerchantName    *string
	Amount          *float64
	Currency        *string
	BillingCycle    *BillingCycle
	NextBillingDate *time.Time
	Status          *SubscriptionStatus
	Category        *string
	Notes           *string
}

// Budget is a spend envelope linked to a set of cards. AllocatedAmount and
// SpentAmount are forced to zero on creation regardless of caller input.
type Budget struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Period          string    `json:"period"`
	TotalAmount     float64   `json:"total_amount"`
	AllocatedAmount float64   `json:"allocated_amount"`
	SpentAmount     float64   `json:"spent_amount"`
	DepartmentID    string    `json:"department_id,omitempty"`
	ProjectID       string    `json:"project_id,omitempty"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	CardsLinked     []string  `json:"cards_linked"`
}

type BudgetPatch struct {
	Name            *string
	Period          *string
	TotalAmount     *float64
	AllocatedAmount *float64
	SpentAmount     *float64
	DepartmentID    *string
	ProjectID       *string
	StartDate       *time.Time
	EndDate         *time.Time
	CardsLinked     []string
}

// APISetting is an outbound integration credential. The key material lives
// in plaintext in process memory; callers must not log it.
type APISetting struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	APIKey           string    `json:"-"`
	APISecret        string    `json:"-"`
	Endpoint         string    `json:"endpoint"`
	IsActive         bool      `json:"is_active"`
	LastAccessed     time.Time `json:"last_accessed"`
	AllowedIPs       []string  `json:"allowed_ips,omitempty"`
	WebhookURL       string    `json:"webhook_url,omitempty"`
	EventsSubscribed []string  `json:"events_subscribed,omitempty"`
}

type APISettingPatch struct {
	Name             *string
	Description      *string
	APIKey           *string
	APISecret        *string
	Endpoint         *string
	IsActive         *bool
	LastAccessed     *time.Time
	AllowedIPs       []string
	WebhookURL       *string
	EventsSubscribed []string
}

// ReportType enumerates the compliance artifacts the store can generate.
type ReportType string

const (
	ReportSpendingPolicyAdherence ReportType = "spending_policy_adherence"
	ReportTransactionAudits       ReportType = "transaction_audits"
	ReportUserActivity            ReportType = "user_activity"
	ReportFinancialReconciliation ReportType = "financial_reconciliation"
)

// ReportStatus is the generation state of a compliance report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// ComplianceReport is a generated artifact summarizing activity.
type ComplianceReport struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ReportType    ReportType     `json:"report_type"`
	GeneratedBy   string         `json:"generated_by"`
	GeneratedDate time.Time      `json:"generated_date"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	Status        ReportStatus   `json:"status"`
	FailureReason string         `json:"failure_reason,omitempty"`
	DownloadURL   string         `json:"download_url,omitempty"`
	Parameters    map[string]any `json:"parameters"`
}

// ReportParams is the caller's input to compliance report generation.
type ReportParams struct {
	ReportType ReportType     `json:"report_type"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// StatementStatus is the review state of a monthly statement.
type StatementStatus string

const (
	StatementGenerated StatementStatus = "generated"
	StatementReviewed  StatementStatus = "reviewed"
	StatementApproved  StatementStatus = "approved"
)

// Statement is a monthly card statement with totals aggregated from the
// card's transactions inside the period.
type Statement struct {
	ID             string          `json:"id"`
	CardID         string          `json:"card_id"`
	StatementDate  time.Time       `json:"statement_date"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	TotalSpent     float64         `json:"total_spent"`
	TotalRefunds   float64         `json:"total_refunds"`
	ClosingBalance float64         `json:"closing_balance"`
	Status         StatementStatus `json:"status"`
	DownloadURL    string          `json:"download_url"`
}

// ApprovalWorkflow selects how card requests are approved.
type ApprovalWorkflow string

const (
	SingleApprover ApprovalWorkflow = "single_approver"
	MultiApprover  ApprovalWorkflow = "multi_approver"
	AutoApprove    ApprovalWorkflow = "auto_approve"
)

// AppConfig is the process-wide configuration singleton. Updates are partial
// merges over the existing value.
type AppConfig struct {
	DefaultCurrency        string           `json:"default_currency"`
	AuditLogRetentionDays  int              `json:"audit_log_retention_days"`
	ApprovalWorkflow       ApprovalWorkflow `json:"approval_workflow"`
	MaxVirtualCardsPerUser int              `json:"max_virtual_cards_per_user"`
	EnableMFA              bool             `json:"enable_mfa"`
}

type AppConfigPatch struct {
	DefaultCurrency        *string
	AuditLogRetentionDays  *int
	ApprovalWorkflow       *ApprovalWorkflow
	MaxVirtualCardsPerUser *int
	EnableMFA              *bool
}

// Snapshot is a deep-copied view of every collection plus the config
// singleton, read by views on each render.
type Snapshot struct {
	MerchantCategories  []MerchantCategory
	PolicyRules         []PolicyRule
	CardRequests        []CardRequest
	VirtualCards        []VirtualCard
	AuditLogs           []AuditLogEntry
	PermissionProfiles  []PermissionProfile
	AlertConfigurations []AlertConfiguration
	Subscriptions       []Subscription
	Budgets             []Budget
	APISettings         []APISetting
	ComplianceReports   []ComplianceReport
	Statements          []Statement
	Config              AppConfig
}
