package domain

import "slices"

// ServiceOffering is one shipping service sold within a distance tier.
type ServiceOffering struct {
	Name     string
	BaseDays int
	Price    float64 // USD
}

// tariff lists each tier's offerings fastest-first. It is never mutated;
// OfferingsFor hands out copies.
var tariff = map[Tier][]ServiceOffering{
	TierLocal: {
		{Name: "Express Overnight", BaseDays: 1, Price: 28.99},
		{Name: "Two-Day Express", BaseDays: 2, Price: 16.99},
		{Name: "Ground Shipping", BaseDays: 3, Price: 11.99},
	},
	TierRegional: {
		{Name: "Express Overnight", BaseDays: 1, Price: 32.99},
		{Name: "Two-Day Express", BaseDays: 2, Price: 19.99},
		{Name: "Ground Shipping", BaseDays: 4, Price: 14.99},
	},
	TierNational: {
		{Name: "Express Overnight", BaseDays: 2, Price: 39.99},
		{Name: "Two-Day Express", BaseDays: 3, Price: 24.99},
		{Name: "Standard Ground", BaseDays: 5, Price: 16.99},
	},
	TierContinental: {
		{Name: "Priority Express", BaseDays: 2, Price: 45.99},
		{Name: "Cross-Country Express", BaseDays: 4, Price: 29.99},
		{Name: "Economy Ground", BaseDays: 7, Price: 18.99},
	},
}

// OfferingsFor returns the offerings for tier in table order. The slice is a
// copy; callers may modify it freely. Unknown tiers yield nil.
func OfferingsFor(tier Tier) []ServiceOffering {
	return slices.Clone(tariff[tier])
}
