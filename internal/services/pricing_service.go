package services

import (
	"math"
	"time"

	"haulgo/internal/models"
	"haulgo/internal/utils"
)

// Quote is a priced breakdown for one vehicle category.
type Quote struct {
	VehicleCategory models.VehicleCategory `json:"vehicle_category"`
	DistanceKM      float64                `json:"distance_km"`
	BaseFare        float64                `json:"base_fare"`
	PerKMRate       float64                `json:"per_km_rate"`
	DistanceFare    float64                `json:"distance_fare"`
	SurgeMultiplier float64                `json:"surge_multiplier"`
	Total           float64                `json:"total"`
	Currency        string                 `json:"currency"`
}

type PricingService interface {
	Estimate(category models.VehicleCategory, distanceKM float64, at time.Time) *Quote
	EstimateAll(distanceKM float64, at time.Time) []*Quote
}

type categoryRate struct {
	baseFare float64
	perKM    float64
}

type pricingService struct {
	rates       map[models.VehicleCategory]categoryRate
	defaultRate categoryRate
	currency    string
}

func NewPricingService(currency string) PricingService {
	return &pricingService{
		rates: map[models.VehicleCategory]categoryRate{
			models.VehicleCategoryBike:   {baseFare: 500, perKM: 150},
			models.VehicleCategoryVan:    {baseFare: 1000, perKM: 300},
			models.VehicleCategoryPickup: {baseFare: 1500, perKM: 400},
			models.VehicleCategoryTruck:  {baseFare: 2500, perKM: 600},
		},
		defaultRate: categoryRate{baseFare: 1000, perKM: 300},
		currency:    currency,
	}
}

// Estimate prices a trip for one category. Unknown categories fall back to
// the default rate rather than failing; category validity is enforced at
// the request boundary.
func (s *pricingService) Estimate(category models.VehicleCategory, distanceKM float64, at time.Time) *Quote {
	rate, ok := s.rates[category]
	if !ok {
		rate = s.defaultRate
	}

	surge := surgeMultiplier(at)
	distanceFare := distanceKM * rate.perKM
	total := math.Round((rate.baseFare + distanceFare) * surge)

	return &Quote{
		VehicleCategory: category,
		DistanceKM:      distanceKM,
		BaseFare:        rate.baseFare,
		PerKMRate:       rate.perKM,
		DistanceFare:    distanceFare,
		SurgeMultiplier: surge,
		Total:           total,
		Currency:        s.currency,
	}
}

func (s *pricingService) EstimateAll(distanceKM float64, at time.Time) []*Quote {
	categories := []models.VehicleCategory{
		models.VehicleCategoryBike,
		models.VehicleCategoryVan,
		models.VehicleCategoryPickup,
		models.VehicleCategoryTruck,
	}

	quotes := make([]*Quote, 0, len(categories))
	for _, category := range categories {
		quotes = append(quotes, s.Estimate(category, distanceKM, at))
	}

	return quotes
}

// surgeMultiplier applies peak-hour pricing during the morning and evening
// rush windows, both ends inclusive.
func surgeMultiplier(at time.Time) float64 {
	hour := at.Hour()
	morning := hour >= utils.MorningPeakStart && hour <= utils.MorningPeakEnd
	evening := hour >= utils.EveningPeakStart && hour <= utils.EveningPeakEnd

	if morning || evening {
		return utils.SurgeMultiplier
	}
	return 1.0
}
