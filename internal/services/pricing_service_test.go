package services

import (
	"testing"
	"time"

	"haulgo/internal/models"
)

func offPeak() time.Time {
	return time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
}

func morningPeak() time.Time {
	return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
}

func TestEstimateOffPeak(t *testing.T) {
	pricing := NewPricingService("NGN")

	tests := []struct {
		category models.VehicleCategory
		distance float64
		want     float64
	}{
		{models.VehicleCategoryBike, 10, 2000},   // 500 + 10*150
		{models.VehicleCategoryVan, 10, 4000},    // 1000 + 10*300
		{models.VehicleCategoryPickup, 10, 5500}, // 1500 + 10*400
		{models.VehicleCategoryTruck, 10, 8500},  // 2500 + 10*600
		{models.VehicleCategoryBike, 0, 500},
	}

	for _, tt := range tests {
		quote := pricing.Estimate(tt.category, tt.distance, offPeak())
		if quote.Total != tt.want {
			t.Errorf("Estimate(%s, %.1fkm) = %.2f, want %.2f", tt.category, tt.distance, quote.Total, tt.want)
		}
		if quote.SurgeMultiplier != 1.0 {
			t.Errorf("off-peak surge = %.2f, want 1.0", quote.SurgeMultiplier)
		}
		if quote.Currency != "NGN" {
			t.Errorf("currency = %q, want NGN", quote.Currency)
		}
	}
}

func TestEstimatePeakSurge(t *testing.T) {
	pricing := NewPricingService("NGN")

	quote := pricing.Estimate(models.VehicleCategoryVan, 10, morningPeak())
	if quote.SurgeMultiplier != 1.2 {
		t.Fatalf("peak surge = %.2f, want 1.2", quote.SurgeMultiplier)
	}
	if quote.Total != 4800 {
		t.Fatalf("peak total = %.2f, want 4800", quote.Total)
	}
}

func TestEstimateSurgeWindows(t *testing.T) {
	pricing := NewPricingService("NGN")

	tests := []struct {
		hour  int
		surge float64
	}{
		{6, 1.0},
		{7, 1.2},
		{9, 1.2},
		{10, 1.0},
		{16, 1.0},
		{17, 1.2},
		{19, 1.2},
		{20, 1.0},
		{23, 1.0},
	}

	for _, tt := range tests {
		at := time.Date(2025, 3, 10, tt.hour, 30, 0, 0, time.UTC)
		quote := pricing.Estimate(models.VehicleCategoryBike, 5, at)
		if quote.SurgeMultiplier != tt.surge {
			t.Errorf("hour %d: surge = %.2f, want %.2f", tt.hour, quote.SurgeMultiplier, tt.surge)
		}
	}
}

func TestEstimateUnknownCategoryDefaults(t *testing.T) {
	pricing := NewPricingService("NGN")

	quote := pricing.Estimate(models.VehicleCategory("hovercraft"), 10, offPeak())
	if quote.Total != 4000 { // default 1000 + 10*300
		t.Fatalf("default total = %.2f, want 4000", quote.Total)
	}
}

func TestEstimateRoundsToWholeUnits(t *testing.T) {
	pricing := NewPricingService("NGN")

	// 500 + 3.33*150 = 999.5 rounds up.
	quote := pricing.Estimate(models.VehicleCategoryBike, 3.33, offPeak())
	if quote.Total != 1000 {
		t.Fatalf("rounded total = %.2f, want 1000", quote.Total)
	}
}

func TestEstimateAllCoversEveryCategory(t *testing.T) {
	pricing := NewPricingService("NGN")

	quotes := pricing.EstimateAll(5, offPeak())
	if len(quotes) != 4 {
		t.Fatalf("EstimateAll returned %d quotes, want 4", len(quotes))
	}

	seen := make(map[models.VehicleCategory]bool)
	for _, quote := range quotes {
		seen[quote.VehicleCategory] = true
	}
	for _, category := range []models.VehicleCategory{
		models.VehicleCategoryBike, models.VehicleCategoryVan,
		models.VehicleCategoryPickup, models.VehicleCategoryTruck,
	} {
		if !seen[category] {
			t.Errorf("EstimateAll missing category %s", category)
		}
	}
}
