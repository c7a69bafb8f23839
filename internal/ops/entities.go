package ops

import (
	"context"
	"fmt"
	"time"

	"cardops.org/internal/cards"
	"cardops.org/internal/ids"
)

// CreateVirtualCard issues a virtual card: id and generation date are
// store-assigned and the number mask comes from a monotonic counter, so two
// issuances can never collide.
func (s *InMemory) CreateVirtualCard(ctx context.Context, vc VirtualCard) (VirtualCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vc.ID = ids.New()
	vc.GenerationDate = time.Now().UTC()
	vc.Type = cards.TypeVirtual
	s.maskSeq++
	vc.NumberMask = fmt.Sprintf("V-%d", s.maskSeq)
	if vc.Status == "" {
		vc.Status = cards.StatusActive
	}
	s.virtualCards = append(s.virtualCards, cloneVirtual(vc))
	s.committed("create_virtual_card", vc.ID)
	return vc, nil
}

// UpdateVirtualCard merges non-nil patch fields. IsSingleUse is stored but
// never enforced here; auto-termination belongs to an external system.
func (s *InMemory) UpdateVirtualCard(ctx context.Context, id string, patch VirtualCardPatch) (VirtualCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.virtualCards {
		if s.virtualCards[i].ID != id {
			continue
		}
		v := &s.virtualCards[i]
		if patch.HolderName != nil {
			v.HolderName = *patch.HolderName
		}
		if patch.Balance != nil {
			v.Balance = *patch.Balance
		}
		if patch.Limit != nil {
			v.Limit = *patch.Limit
		}
		if patch.Status != nil {
			v.Status = *patch.Status
		}
		if patch.Frozen != nil {
			v.Frozen = *patch.Frozen
		}
		if patch.IsSingleUse != nil {
			v.IsSingleUse = *patch.IsSingleUse
		}
		if patch.Expiration != nil {
			v.Expiration = *patch.Expiration
		}
		if patch.Purpose != nil {
			v.Purpose = *patch.Purpose
		}
		if patch.AutoTerminateDate != nil {
			d := *patch.AutoTerminateDate
			v.AutoTerminateDate = &d
		}
		s.committed("update_virtual_card", id)
		return cloneVirtual(*v), nil
	}
	return VirtualCard{}, s.missing("update_virtual_card")
}

func (s *InMemory) DeleteVirtualCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.virtualCards {
		if s.virtualCards[i].ID == id {
			s.virtualCards = append(s.virtualCards[:i], s.virtualCards[i+1:]...)
			s.committed("delete_virtual_card", id)
			return nil
		}
	}
	return s.missing("delete_virtual_card")
}

func (s *InMemory) AddPermissionProfile(ctx context.Context, p PermissionProfile) (PermissionProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = ids.New()
	s.permissionProfiles = append(s.permissionProfiles, p)
	s.committed("add_permission_profile", p.ID)
	return p, nil
}

func (s *InMemory) UpdatePermissionProfile(ctx context.Context, id string, patch PermissionProfilePatch) (PermissionProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.permissionProfiles {
		if s.permissionProfiles[i].ID != id {
			continue
		}
		p := &s.permissionProfiles[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Permissions != nil {
			p.Permissions = *patch.Permissions
		}
		s.committed("update_permission_profile", id)
		return *p, nil
	}
	return PermissionProfile{}, s.missing("update_permission_profile")
}

func (s *InMemory) DeletePermissionProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.permissionProfiles {
		if s.permissionProfiles[i].ID == id {
			s.permissionProfiles = append(s.permissionProfiles[:i], s.permissionProfiles[i+1:]...)
			s.committed("delete_permission_profile", id)
			return nil
		}
	}
	return s.missing("delete_permission_profile")
}

// AddAlertConfiguration appends without deduplication; overlapping
// configurations may all fire for one event.
func (s *InMemory) AddAlertConfiguration(ctx context.Context, a AlertConfiguration) (AlertConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = ids.New()
	s.alertConfigurations = append(s.alertConfigurations, cloneAlert(a))
	s.committed("add_alert_configuration", a.ID)
	return a, nil
}

func (s *InMemory) UpdateAlertConfiguration(ctx context.Context, id string, patch AlertConfigurationPatch) (AlertConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alertConfigurations {
		if s.alertConfigurations[i].ID != id {
			continue
		}
		a := &s.alertConfigurations[i]
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Description != nil {
			a.Description = *patch.Description
		}
		if patch.Type != nil {
			a.Type = *patch.Type
		}
		if patch.Threshold != nil {
			a.Threshold = *patch.Threshold
		}
		if patch.Period != nil {
			a.Period = *patch.Period
		}
		if patch.TargetCards != nil {
			a.TargetCards = append([]string(nil), patch.TargetCards...)
		}
		if patch.TargetUsers != nil {
			a.TargetUsers = append([]string(nil), patch.TargetUsers...)
		}
		if patch.Channels != nil {
			a.Channels = append([]string(nil), patch.Channels...)
		}
		if patch.IsActive != nil {
			a.IsActive = *patch.IsActive
		}
		s.committed("update_alert_configuration", id)
		return cloneAlert(*a), nil
	}
	return AlertConfiguration{}, s.missing("update_alert_configuration")
}

func (s *InMemory) DeleteAlertConfiguration(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alertConfigurations {
		if s.alertConfigurations[i].ID == id {
			s.alertConfigurations = append(s.alertConfigurations[:i], s.alertConfigurations[i+1:]...)
			s.committed("delete_alert_configuration", id)
			return nil
		}
	}
	return s.missing("delete_alert_configuration")
}

func (s *InMemory) AddSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = ids.New()
	if sub.Status == "" {
		sub.Status = SubscriptionActive
	}
	s.subscriptions = append(s.subscriptions, sub)
	s.committed("add_subscription", sub.ID)
	return sub, nil
}

func (s *InMemory) UpdateSubscription(ctx context.Context, id string, patch SubscriptionPatch) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subscriptions {
		if s.subscriptions[i].ID != id {
			continue
		}
		sub := &s.subscriptions[i]
		if patch.CardID != nil {
			sub.CardID = *patch.CardID
		}
		if patch.MerchantName != nil {
			sub.MerchantName = *patch.MerchantName
		}
		if patch.Amount != nil {
			sub.Amount = *patch.Amount
		}
		if patch.Currency != nil {
			sub.Currency = *patch.Currency
		}
		if patch.BillingCycle != nil {
			sub.BillingCycle = *patch.BillingCycle
		}
		if patch.NextBillingDate != nil {
			sub.NextBillingDate = *patch.NextBillingDate
		}
		if patch.Status != nil {
			sub.Status = *patch.Status
		}
		if patch.Category != nil {
			sub.Category = *patch.Category
		}
		if patch.Notes != nil {
			sub.Notes = *patch.Notes
		}
		s.committed("update_subscription", id)
		return *sub, nil
	}
	return Subscription{}, s.missing("update_subscription")
}

func (s *InMemory) DeleteSubscription(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subscriptions {
		if s.subscriptions[i].ID == id {
			s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
			s.committed("delete_subscription", id)
			return nil
		}
	}
	return s.missing("delete_subscription")
}

// AddBudget appends a budget with allocated and spent amounts reset to zero
// regardless of caller input. Allocation happens through later updates.
func (s *InMemory) AddBudget(ctx context.Context, b Budget) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = ids.New()
	b.AllocatedAmount = 0
	b.SpentAmount = 0
	s.budgets = append(s.budgets, cloneBudget(b))
	s.committed("add_budget", b.ID)
	return b, nil
}

func (s *InMemory) UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID != id {
			continue
		}
		b := &s.budgets[i]
		if patch.Name != nil {
			b.Name = *patch.Name
		}
		if patch.Period != nil {
			b.Period = *patch.Period
		}
		if patch.TotalAmount != nil {
			b.TotalAmount = *patch.TotalAmount
		}
		if patch.AllocatedAmount != nil {
			b.AllocatedAmount = *patch.AllocatedAmount
		}
		if patch.SpentAmount != nil {
			b.SpentAmount = *patch.SpentAmount
		}
		if patch.DepartmentID != nil {
			b.DepartmentID = *patch.DepartmentID
		}
		if patch.ProjectID != nil {
			b.ProjectID = *patch.ProjectID
		}
		if patch.StartDate != nil {
			b.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			b.EndDate = *patch.EndDate
		}
		if patch.CardsLinked != nil {
			b.CardsLinked = append([]string(nil), patch.CardsLinked...)
		}
		s.committed("update_budget", id)
		return cloneBudget(*b), nil
	}
	return Budget{}, s.missing("update_budget")
}

func (s *InMemory) DeleteBudget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			s.committed("delete_budget", id)
			return nil
		}
	}
	return s.missing("delete_budget")
}

func (s *InMemory) AddAPISetting(ctx context.Context, a APISetting) (APISetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = ids.New()
	if a.LastAccessed.IsZero() {
		a.LastAccessed = time.Now().UTC()
	}
	s.apiSettings = append(s.apiSettings, cloneAPISetting(a))
	s.committed("add_api_setting", a.ID)
	return a, nil
}

func (s *InMemory) UpdateAPISetting(ctx context.Context, id string, patch APISettingPatch) (APISetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apiSettings {
		if s.apiSettings[i].ID != id {
			continue
		}
		a := &s.apiSettings[i]
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Description != nil {
			a.Description = *patch.Description
		}
		if patch.APIKey != nil {
			a.APIKey = *patch.APIKey
		}
		if patch.APISecret != nil {
			a.APISecret = *patch.APISecret
		}
		if patch.Endpoint != nil {
			a.Endpoint = *patch.Endpoint
		}
		if patch.IsActive != nil {
			a.IsActive = *patch.IsActive
		}
		if patch.LastAccessed != nil {
			a.LastAccessed = *patch.LastAccessed
		}
		if patch.AllowedIPs != nil {
			a.AllowedIPs = append([]string(nil), patch.AllowedIPs...)
		}
		if patch.WebhookURL != nil {
			a.WebhookURL = *patch.WebhookURL
		}
		if patch.EventsSubscribed != nil {
			a.EventsSubscribed = append([]string(nil), patch.EventsSubscribed...)
		}
		s.committed("update_api_setting", id)
		return cloneAPISetting(*a), nil
	}
	return APISetting{}, s.missing("update_api_setting")
}
