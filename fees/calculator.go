// Package fees computes the registration fee for a homestay application.
// The calculation is pure: the same inputs always produce the same
// breakdown, so every figure on an application can be recomputed and
// golden-tested.
package fees

import (
	"fmt"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/shopspring/decimal"
)

// Tariff schedule: base fee by category and location type. Amounts are
// jurisdiction constants from the notified fee schedule.
var baseFeeTable = map[models.HomestayCategory]map[models.LocationType]int64{
	models.DiamondCategory: {
		models.MunicipalLocation:     18000,
		models.TownPlanningLocation:  12000,
		models.GramPanchayatLocation: 10000,
	},
	models.GoldCategory: {
		models.MunicipalLocation:     12000,
		models.TownPlanningLocation:  8000,
		models.GramPanchayatLocation: 6000,
	},
	models.SilverCategory: {
		models.MunicipalLocation:     8000,
		models.TownPlanningLocation:  5000,
		models.GramPanchayatLocation: 3000,
	},
}

// GST is charged flat on the base fee.
var gstRate = decimal.NewFromFloat(0.18)

// Discount percentages. Validity discounts reward multi-year registration;
// the women-owner and tribal-sub-division concessions come from department
// notifications and are applied on the pre-discount total.
var (
	validityDiscountRate = map[int]decimal.Decimal{
		1: decimal.Zero,
		2: decimal.NewFromFloat(0.05),
		3: decimal.NewFromFloat(0.10),
	}
	womenOwnerDiscountRate = decimal.NewFromFloat(0.05)
	tribalAreaDiscountRate = decimal.NewFromFloat(0.50)
)

// Breakdown itemizes every component of the final fee.
type Breakdown struct {
	BaseFee              decimal.Decimal `json:"base_fee"`
	GSTAmount            decimal.Decimal `json:"gst_amount"`
	TotalBeforeDiscounts decimal.Decimal `json:"total_before_discounts"`
	ValidityDiscount     decimal.Decimal `json:"validity_discount"`
	WomenOwnerDiscount   decimal.Decimal `json:"women_owner_discount"`
	TribalAreaDiscount   decimal.Decimal `json:"tribal_area_discount"`
	TotalDiscount        decimal.Decimal `json:"total_discount"`
	TotalFee             decimal.Decimal `json:"total_fee"`
}

// Input carries everything the calculator needs.
type Input struct {
	Category      models.HomestayCategory
	LocationType  models.LocationType
	ValidityYears int
	OwnerGender   models.Gender
	IsTribalArea  bool
}

// Compute derives the fee breakdown for the given inputs. The total fee is
// floored at zero and can never exceed the pre-discount total.
func Compute(in Input) (*Breakdown, error) {
	byLocation, ok := baseFeeTable[in.Category]
	if !ok {
		return nil, fmt.Errorf("unknown homestay category: %s", in.Category)
	}
	base, ok := byLocation[in.LocationType]
	if !ok {
		return nil, fmt.Errorf("unknown location type: %s", in.LocationType)
	}
	validityRate, ok := validityDiscountRate[in.ValidityYears]
	if !ok {
		return nil, fmt.Errorf("unsupported validity period: %d years", in.ValidityYears)
	}

	baseFee := decimal.NewFromInt(base)
	gst := baseFee.Mul(gstRate).Round(2)
	totalBefore := baseFee.Add(gst)

	validityDiscount := totalBefore.Mul(validityRate).Round(2)

	womenDiscount := decimal.Zero
	if in.OwnerGender == models.FemaleGender {
		womenDiscount = totalBefore.Mul(womenOwnerDiscountRate).Round(2)
	}

	tribalDiscount := decimal.Zero
	if in.IsTribalArea {
		tribalDiscount = totalBefore.Mul(tribalAreaDiscountRate).Round(2)
	}

	totalDiscount := validityDiscount.Add(womenDiscount).Add(tribalDiscount)
	if totalDiscount.GreaterThan(totalBefore) {
		totalDiscount = totalBefore
	}

	return &Breakdown{
		BaseFee:              baseFee,
		GSTAmount:            gst,
		TotalBeforeDiscounts: totalBefore,
		ValidityDiscount:     validityDiscount,
		WomenOwnerDiscount:   womenDiscount,
		TribalAreaDiscount:   tribalDiscount,
		TotalDiscount:        totalDiscount,
		TotalFee:             totalBefore.Sub(totalDiscount),
	}, nil
}

// Apply writes a computed breakdown onto an application record.
func Apply(app *models.Application, b *Breakdown) {
	app.BaseFee = &b.BaseFee
	app.GSTAmount = &b.GSTAmount
	app.TotalBeforeDiscounts = &b.TotalBeforeDiscounts
	app.ValidityDiscount = &b.ValidityDiscount
	app.WomenOwnerDiscount = &b.WomenOwnerDiscount
	app.TribalAreaDiscount = &b.TribalAreaDiscount
	app.TotalDiscount = &b.TotalDiscount
	app.TotalFee = &b.TotalFee
}

// SupportedValidityYears lists the validity options the tariff recognizes.
func SupportedValidityYears() []int {
	return []int{1, 2, 3}
}
