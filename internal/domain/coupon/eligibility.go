package coupon

import "slices"

// UserEligible checks the user-side constraints of a rule set. All present
// constraints are AND-ed; an absent constraint imposes no restriction.
func UserEligible(rule Rule, user UserContext, isFirstOrder bool) bool {
	if len(rule.AllowedUserTiers) > 0 && !slices.Contains(rule.AllowedUserTiers, user.Tier) {
		return false
	}
	if rule.MinLifetimeSpend != nil && user.LifetimeSpend.LessThan(*rule.MinLifetimeSpend) {
		return false
	}
	if rule.MinOrdersPlaced != nil && user.OrdersPlaced < *rule.MinOrdersPlaced {
		return false
	}
	if rule.FirstOrderOnly && !isFirstOrder {
		return false
	}
	if len(rule.AllowedCountries) > 0 && !slices.Contains(rule.AllowedCountries, user.Country) {
		return false
	}
	return true
}

// CartEligible checks the cart-side constraints of a rule set against the
// cart aggregates. ApplicableCategories is an any-of match, ExcludedCategories
// a none-of match; both may be present and are enforced independently.
func CartEligible(rule Rule, sum CartSummary) bool {
	if rule.MinCartValue != nil && sum.Value.LessThan(*rule.MinCartValue) {
		return false
	}
	if rule.MinItemsCount != nil && sum.ItemCount < *rule.MinItemsCount {
		return false
	}
	if len(rule.ApplicableCategories) > 0 && !sum.HasAnyCategory(rule.ApplicableCategories) {
		return false
	}
	if len(rule.ExcludedCategories) > 0 && sum.HasAnyCategory(rule.ExcludedCategories) {
		return false
	}
	return true
}
