package fees

import (
	"testing"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiamondMunicipalNoDiscounts(t *testing.T) {
	b, err := Compute(Input{
		Category:      models.DiamondCategory,
		LocationType:  models.MunicipalLocation,
		ValidityYears: 1,
		OwnerGender:   models.MaleGender,
	})
	require.NoError(t, err)

	assert.True(t, b.BaseFee.Equal(decimal.NewFromInt(18000)), "base fee: %s", b.BaseFee)
	assert.True(t, b.GSTAmount.Equal(decimal.NewFromInt(3240)), "gst: %s", b.GSTAmount)
	assert.True(t, b.TotalDiscount.Equal(decimal.Zero), "discount: %s", b.TotalDiscount)
	assert.True(t, b.TotalFee.Equal(decimal.NewFromInt(21240)), "total: %s", b.TotalFee)
}

func TestComputeBaseFeeTable(t *testing.T) {
	cases := []struct {
		category models.HomestayCategory
		location models.LocationType
		base     int64
	}{
		{models.DiamondCategory, models.MunicipalLocation, 18000},
		{models.DiamondCategory, models.TownPlanningLocation, 12000},
		{models.DiamondCategory, models.GramPanchayatLocation, 10000},
		{models.GoldCategory, models.MunicipalLocation, 12000},
		{models.GoldCategory, models.TownPlanningLocation, 8000},
		{models.GoldCategory, models.GramPanchayatLocation, 6000},
		{models.SilverCategory, models.MunicipalLocation, 8000},
		{models.SilverCategory, models.TownPlanningLocation, 5000},
		{models.SilverCategory, models.GramPanchayatLocation, 3000},
	}

	for _, tc := range cases {
		b, err := Compute(Input{
			Category:      tc.category,
			LocationType:  tc.location,
			ValidityYears: 1,
			OwnerGender:   models.MaleGender,
		})
		require.NoError(t, err)
		assert.True(t, b.BaseFee.Equal(decimal.NewFromInt(tc.base)),
			"%s/%s base fee: got %s want %d", tc.category, tc.location, b.BaseFee, tc.base)
	}
}

func TestComputeValidityDiscountReducesFee(t *testing.T) {
	oneYear, err := Compute(Input{
		Category:      models.SilverCategory,
		LocationType:  models.GramPanchayatLocation,
		ValidityYears: 1,
		OwnerGender:   models.MaleGender,
	})
	require.NoError(t, err)

	threeYear, err := Compute(Input{
		Category:      models.SilverCategory,
		LocationType:  models.GramPanchayatLocation,
		ValidityYears: 3,
		OwnerGender:   models.MaleGender,
	})
	require.NoError(t, err)

	assert.True(t, threeYear.TotalFee.LessThan(oneYear.TotalFee),
		"3-year fee %s should be less than 1-year fee %s", threeYear.TotalFee, oneYear.TotalFee)
}

func TestComputeStackedDiscountsNeverGoNegative(t *testing.T) {
	for _, category := range []models.HomestayCategory{models.DiamondCategory, models.GoldCategory, models.SilverCategory} {
		for _, location := range []models.LocationType{models.MunicipalLocation, models.TownPlanningLocation, models.GramPanchayatLocation} {
			for _, years := range SupportedValidityYears() {
				for _, gender := range []models.Gender{models.MaleGender, models.FemaleGender} {
					for _, tribal := range []bool{false, true} {
						b, err := Compute(Input{
							Category:      category,
							LocationType:  location,
							ValidityYears: years,
							OwnerGender:   gender,
							IsTribalArea:  tribal,
						})
						require.NoError(t, err)
						assert.False(t, b.TotalFee.IsNegative(),
							"%s/%s/%dy fee went negative: %s", category, location, years, b.TotalFee)
						assert.True(t, b.TotalFee.LessThanOrEqual(b.TotalBeforeDiscounts),
							"%s/%s/%dy fee exceeds pre-discount total", category, location, years)
						assert.True(t, b.TotalFee.Equal(b.TotalBeforeDiscounts.Sub(b.TotalDiscount)),
							"breakdown arithmetic mismatch")
					}
				}
			}
		}
	}
}

func TestComputeWomenOwnerDiscount(t *testing.T) {
	male, err := Compute(Input{
		Category:      models.GoldCategory,
		LocationType:  models.MunicipalLocation,
		ValidityYears: 1,
		OwnerGender:   models.MaleGender,
	})
	require.NoError(t, err)

	female, err := Compute(Input{
		Category:      models.GoldCategory,
		LocationType:  models.MunicipalLocation,
		ValidityYears: 1,
		OwnerGender:   models.FemaleGender,
	})
	require.NoError(t, err)

	assert.True(t, female.WomenOwnerDiscount.GreaterThan(decimal.Zero))
	assert.True(t, female.TotalFee.LessThan(male.TotalFee))
}

func TestComputeRejectsUnknownInputs(t *testing.T) {
	_, err := Compute(Input{Category: "PLATINUM", LocationType: models.MunicipalLocation, ValidityYears: 1})
	assert.Error(t, err)

	_, err = Compute(Input{Category: models.GoldCategory, LocationType: "VILLAGE", ValidityYears: 1})
	assert.Error(t, err)

	_, err = Compute(Input{Category: models.GoldCategory, LocationType: models.MunicipalLocation, ValidityYears: 7})
	assert.Error(t, err)
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		Category:      models.DiamondCategory,
		LocationType:  models.GramPanchayatLocation,
		ValidityYears: 2,
		OwnerGender:   models.FemaleGender,
		IsTribalArea:  true,
	}

	first, err := Compute(in)
	require.NoError(t, err)
	second, err := Compute(in)
	require.NoError(t, err)

	assert.True(t, first.TotalFee.Equal(second.TotalFee))
	assert.True(t, first.TotalDiscount.Equal(second.TotalDiscount))
}
