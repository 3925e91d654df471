package processing

import (
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
)

// Filter оставляет предложения, прошедшие все включенные правила.
// Порядок предложений сохраняется; при выключенных правилах возвращается
// копия входного списка.
func Filter(offers []models.Offer, rules config.ParserConfig) []models.Offer {
	deny := pairSet(rules.BlackList)
	allow := pairSet(rules.WhiteList)
	useDeny := bool(rules.UseBlackList) && len(deny) > 0
	useAllow := bool(rules.UseWhiteList) && len(allow) > 0

	result := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if bool(rules.IsDeliveryDateLimit) && offer.DeliveryDays > models.Number(rules.DeliveryDateLimit) {
			continue
		}
		if bool(rules.OnlyInStock) && !offer.IsInStock() {
			continue
		}
		if bool(rules.OnlyWithGuarantee) && !MentionsGuarantee(offer.QtyDescr) {
			continue
		}
		if bool(rules.IsStoreRatingLimit) && offer.Rating < models.Number(rules.StoreRatingLimit) {
			continue
		}
		if useDeny {
			if _, found := deny[offer.Pair()]; found {
				continue
			}
		}
		if useAllow {
			if _, found := allow[offer.Pair()]; !found {
				continue
			}
		}
		result = append(result, offer)
	}
	return result
}

// Top возвращает не более limit первых предложений
func Top(offers []models.Offer, limit int) []models.Offer {
	if len(offers) > limit {
		return offers[:limit]
	}
	return offers
}

func pairSet(pairs []models.BrandStorePair) map[models.BrandStorePair]struct{} {
	set := make(map[models.BrandStorePair]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	return set
}
