package ops

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cardops.org/internal/audit"
	"cardops.org/internal/cards"
	"cardops.org/internal/ids"
	"cardops.org/internal/obs"
	"cardops.org/internal/stream"
)

const storeName = "ops"

// TransactionSource supplies a card's history for statement aggregation.
// The cards store satisfies it.
type TransactionSource interface {
	CardTransactions(ctx context.Context, cardID string) ([]cards.Transaction, error)
}

// Service is the CRUD surface over the secondary entity collections plus the
// two generation workflows.
type Service interface {
	Snapshot(ctx context.Context) Snapshot

	UpdateMerchantCategory(ctx context.Context, id string, patch MerchantCategoryPatch) (MerchantCategory, error)

	AddPolicyRule(ctx context.Context, rule PolicyRule) (PolicyRule, error)
	UpdatePolicyRule(ctx context.Context, id string, patch PolicyRulePatch) (PolicyRule, error)
	DeletePolicyRule(ctx context.Context, id string) error
	ActiveRulesForCard(ctx context.Context, cardID, holderID string) []PolicyRule

	CreateCardRequest(ctx context.Context, req CardRequest) (CardRequest, error)
	UpdateCardRequestStatus(ctx context.Context, id string, status RequestStatus, approverID string) (CardRequest, error)

	CreateVirtualCard(ctx context.Context, vc VirtualCard) (VirtualCard, error)
	UpdateVirtualCard(ctx context.Context, id string, patch VirtualCardPatch) (VirtualCard, error)
	DeleteVirtualCard(ctx context.Context, id string) error

	AddAuditLog(ctx context.Context, entry AuditLogEntry) (AuditLogEntry, error)

	AddPermissionProfile(ctx context.Context, p PermissionProfile) (PermissionProfile, error)
	UpdatePermissionProfile(ctx context.Context, id string, patch PermissionProfilePatch) (PermissionProfile, error)
	DeletePermissionProfile(ctx context.Context, id string) error

	AddAlertConfiguration(ctx context.Context, a AlertConfiguration) (AlertConfiguration, error)
	UpdateAlertConfiguration(ctx context.Context, id string, patch AlertConfigurationPatch) (AlertConfiguration, error)
	DeleteAlertConfiguration(ctx context.Context, id string) error

	AddSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	UpdateSubscription(ctx context.Context, id string, patch SubscriptionPatch) (Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	AddBudget(ctx context.Context, b Budget) (Budget, error)
	UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	AddAPISetting(ctx context.Context, a APISetting) (APISetting, error)
	UpdateAPISetting(ctx context.Context, id string, patch APISettingPatch) (APISetting, error)

	GenerateComplianceReport(ctx context.Context, params ReportParams) (ComplianceReport, error)
	GenerateStatement(ctx context.Context, cardID string, month, year int) (Statement, error)

	UpdateAppConfig(ctx context.Context, patch AppConfigPatch) AppConfig
}

// InMemory implements Service with one mutex guarding all collections, so
// every mutation is atomic with respect to reads and other mutations.
type InMemory struct {
	mu sync.RWMutex

	merchantCategories  []MerchantCategory
	policyRules         []PolicyRule
	cardRequests        []CardRequest
	virtualCards        []VirtualCard
	auditLogs           []AuditLogEntry
	permissionProfiles  []PermissionProfile
	alertConfigurations []AlertConfiguration
	subscriptions       []Subscription
	budgets             []Budget
	apiSettings         []APISetting
	complianceReports   []ComplianceReport
	statements          []Statement
	config              AppConfig

	maskSeq int

	txSource TransactionSource
	events   *stream.Stream

	// GenerationDelay simulates report/statement build time. Set before use.
	GenerationDelay time.Duration
}

// NewInMemory creates a store seeded with the default merchant categories
// and app configuration. txSource and events may be nil.
func NewInMemory(txSource TransactionSource, events *stream.Stream) *InMemory {
	return &InMemory{
		merchantCategories: []MerchantCategory{
			{ID: "1", Name: "Software", Code: "7372", Description: "Computing tools", BlockedByDefault: false},
			{ID: "2", Name: "Restaurants", Code: "5812", Description: "Dining", BlockedByDefault: true},
			{ID: "3", Name: "Advertising", Code: "7311", Description: "Ads", BlockedByDefault: false},
		},
		config: AppConfig{
			DefaultCurrency:        "USD",
			AuditLogRetentionDays:  365,
			ApprovalWorkflow:       SingleApprover,
			MaxVirtualCardsPerUser: 5,
			EnableMFA:              true,
		},
		maskSeq:         1000,
		txSource:        txSource,
		events:          events,
		GenerationDelay: time.Second,
	}
}

// Snapshot returns a deep copy of every collection. Mutating the result
// never affects the store.
func (s *InMemory) Snapshot(ctx context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		MerchantCategories:  append([]MerchantCategory(nil), s.merchantCategories...),
		PolicyRules:         make([]PolicyRule, 0, len(s.policyRules)),
		CardRequests:        make([]CardRequest, 0, len(s.cardRequests)),
		VirtualCards:        make([]VirtualCard, 0, len(s.virtualCards)),
		AuditLogs:           append([]AuditLogEntry(nil), s.auditLogs...),
		PermissionProfiles:  append([]PermissionProfile(nil), s.permissionProfiles...),
		AlertConfigurations: make([]AlertConfiguration, 0, len(s.alertConfigurations)),
		Subscriptions:       append([]Subscription(nil), s.subscriptions...),
		Budgets:             make([]Budget, 0, len(s.budgets)),
		APISettings:         make([]APISetting, 0, len(s.apiSettings)),
		ComplianceReports:   make([]ComplianceReport, 0, len(s.complianceReports)),
		Statements:          append([]Statement(nil), s.statements...),
		Config:              s.config,
	}
	for _, r := range s.policyRules {
		snap.PolicyRules = append(snap.PolicyRules, cloneRule(r))
	}
	for _, r := range s.cardRequests {
		snap.CardRequests = append(snap.CardRequests, cloneRequest(r))
	}
	for _, v := range s.virtualCards {
		snap.VirtualCards = append(snap.VirtualCards, cloneVirtual(v))
	}
	for _, a := range s.alertConfigurations {
		snap.AlertConfigurations = append(snap.AlertConfigurations, cloneAlert(a))
	}
	for _, b := range s.budgets {
		snap.Budgets = append(snap.Budgets, cloneBudget(b))
	}
	for _, a := range s.apiSettings {
		snap.APISettings = append(snap.APISettings, cloneAPISetting(a))
	}
	for _, r := range s.complianceReports {
		snap.ComplianceReports = append(snap.ComplianceReports, cloneReport(r))
	}
	return snap
}

// UpdateMerchantCategory merges non-nil patch fields into the category.
func (s *InMemory) UpdateMerchantCategory(ctx context.Context, id string, patch MerchantCategoryPatch) (MerchantCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.merchantCategories {
		if s.merchantCategories[i].ID != id {
			continue
		}
		c := &s.merchantCategories[i]
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Code != nil {
			c.Code = *patch.Code
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.BlockedByDefault != nil {
			c.BlockedByDefault = *patch.BlockedByDefault
		}
		s.committed("update_merchant_category", id)
		return *c, nil
	}
	return MerchantCategory{}, s.missing("update_merchant_category")
}

// AddPolicyRule appends a rule with a store-assigned id.
func (s *InMemory) AddPolicyRule(ctx context.Context, rule PolicyRule) (PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule.ID = ids.New()
	s.policyRules = append(s.policyRules, cloneRule(rule))
	s.committed("add_policy_rule", rule.ID)
	return rule, nil
}

func (s *InMemory) UpdatePolicyRule(ctx context.Context, id string, patch PolicyRulePatch) (PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.policyRules {
		if s.policyRules[i].ID != id {
			continue
		}
		r := &s.policyRules[i]
		if patch.Name != nil {
			r.Name = *patch.Name
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Type != nil {
			r.Type = *patch.Type
		}
		if patch.IsActive != nil {
			r.IsActive = *patch.IsActive
		}
		if patch.Priority != nil {
			r.Priority = *patch.Priority
		}
		if patch.Configuration != nil {
			r.Configuration = cloneMap(patch.Configuration)
		}
		if patch.AppliesTo != nil {
			r.AppliesTo = *patch.AppliesTo
		}
		if patch.TargetIDs != nil {
			r.TargetIDs = append([]string(nil), patch.TargetIDs...)
		}
		s.committed("update_policy_rule", id)
		return cloneRule(*r), nil
	}
	return PolicyRule{}, s.missing("update_policy_rule")
}

// DeletePolicyRule removes the rule permanently; there is no soft delete.
func (s *InMemory) DeletePolicyRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.policyRules {
		if s.policyRules[i].ID == id {
			s.policyRules = append(s.policyRules[:i], s.policyRules[i+1:]...)
			s.committed("delete_policy_rule", id)
			return nil
		}
	}
	return s.missing("delete_policy_rule")
}

// ActiveRulesForCard returns the active rules whose scope covers the card or
// holder, in evaluation order: priority ascending, ties by insertion order.
func (s *InMemory) ActiveRulesForCard(ctx context.Context, cardID, holderID string) []PolicyRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PolicyRule
	for _, r := range s.policyRules {
		if !r.IsActive {
			continue
		}
		switch r.AppliesTo {
		case ScopeAllCards:
			out = append(out, cloneRule(r))
		case ScopeSpecificCards:
			if containsString(r.TargetIDs, cardID) {
				out = append(out, cloneRule(r))
			}
		case ScopeSpecificHolders:
			if containsString(r.TargetIDs, holderID) {
				out = append(out, cloneRule(r))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// AddAuditLog appends an entry with store-assigned id and timestamp, then
// mirrors it to the JSON log. TargetID is deliberately not validated.
func (s *InMemory) AddAuditLog(ctx context.Context, entry AuditLogEntry) (AuditLogEntry, error) {
	s.mu.Lock()
	entry.ID = ids.New()
	entry.Timestamp = time.Now().UTC()
	s.auditLogs = append(s.auditLogs, entry)
	s.committed("add_audit_log", entry.ID)
	s.mu.Unlock()

	if err := audit.LogEvent(ctx, entry.ActorID, entry.Action, map[string]any{
		"target_type": string(entry.TargetType),
		"target_id":   entry.TargetID,
		"description": entry.Description,
	}); err != nil {
		obs.LogJSON(map[string]any{"level": "warn", "msg": "audit mirror failed", "err": err.Error()})
	}
	return entry, nil
}

// UpdateAppConfig merges non-nil patch fields over the singleton and
// returns the merged value. Cross-field consistency is not validated here.
func (s *InMemory) UpdateAppConfig(ctx context.Context, patch AppConfigPatch) AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.DefaultCurrency != nil {
		s.config.DefaultCurrency = *patch.DefaultCurrency
	}
	if patch.AuditLogRetentionDays != nil {
		s.config.AuditLogRetentionDays = *patch.AuditLogRetentionDays
	}
	if patch.ApprovalWorkflow != nil {
		s.config.ApprovalWorkflow = *patch.ApprovalWorkflow
	}
	if patch.MaxVirtualCardsPerUser != nil {
		s.config.MaxVirtualCardsPerUser = *patch.MaxVirtualCardsPerUser
	}
	if patch.EnableMFA != nil {
		s.config.EnableMFA = *patch.EnableMFA
	}
	s.committed("update_app_config", "")
	return s.config
}

// committed records a successful mutation. Callers hold the write lock.
func (s *InMemory) committed(op, entityID string) {
	obs.ObserveMutation(storeName, op, "ok")
	s.events.Publish(stream.Event{Store: storeName, Op: op, EntityID: entityID})
}

func (s *InMemory) rejected(op string) {
	obs.ObserveMutation(storeName, op, "invalid_transition")
}

func (s *InMemory) missing(op string) error {
	obs.ObserveMutation(storeName, op, "not_found")
	return fmt.Errorf("%s: %w", op, ErrNotFound)
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRule(r PolicyRule) PolicyRule {
	r.Configuration = cloneMap(r.Configuration)
	r.TargetIDs = append([]string(nil), r.TargetIDs...)
	return r
}

func cloneRequest(r CardRequest) CardRequest {
	if r.ApprovalDate != nil {
		d := *r.ApprovalDate
		r.ApprovalDate = &d
	}
	if r.Details.ExpirationDate != nil {
		d := *r.Details.ExpirationDate
		r.Details.ExpirationDate = &d
	}
	return r
}

func cloneVirtual(v VirtualCard) VirtualCard {
	v.Transactions = append([]cards.Transaction(nil), v.Transactions...)
	if v.AutoTerminateDate != nil {
		d := *v.AutoTerminateDate
		v.AutoTerminateDate = &d
	}
	return v
}

func cloneAlert(a AlertConfiguration) AlertConfiguration {
	a.TargetCards = append([]string(nil), a.TargetCards...)
	a.TargetUsers = append([]string(nil), a.TargetUsers...)
	a.Channels = append([]string(nil), a.Channels...)
	return a
}

func cloneBudget(b Budget) Budget {
	b.CardsLinked = append([]string(nil), b.CardsLinked...)
	return b
}

func cloneAPISetting(a APISetting) APISetting {
	a.AllowedIPs = append([]string(nil), a.AllowedIPs...)
	a.EventsSubscribed = append([]string(nil), a.EventsSubscribed...)
	return a
}

func cloneReport(r ComplianceReport) ComplianceReport {
	r.Parameters = cloneMap(r.Parameters)
	return r
}
