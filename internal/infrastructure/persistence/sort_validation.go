package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
	"plan":       true,
}

// PromptSortFields contains allowed sort fields for prompts
var PromptSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"title":          true,
	"slug":           true,
	"target_model":   true,
	"category":       true,
	"visibility":     true,
	"view_count":     true,
	"like_count":     true,
	"save_count":     true,
	"use_count":      true,
	"rating_average": true,
	"rating_count":   true,
}

// CollectionSortFields contains allowed sort fields for collections
var CollectionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"visibility": true,
}

// CommunitySortFields contains allowed sort fields for communities
var CommunitySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"slug":         true,
	"visibility":   true,
	"member_count": true,
}

// ListingSortFields contains allowed sort fields for marketplace listings
var ListingSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"title":         true,
	"status":        true,
	"price_usd":     true,
	"price_credits": true,
	"sales_count":   true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"paid_at":      true,
	"completed_at": true,
}

// DisputeSortFields contains allowed sort fields for disputes
var DisputeSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"resolved_at": true,
}

// LedgerSortFields contains allowed sort fields for ledger entries
var LedgerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"type":       true,
	"amount":     true,
}

// PayoutSortFields contains allowed sort fields for payout batches
var PayoutSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"total_credits": true,
	"submitted_at":  true,
	"completed_at":  true,
}
