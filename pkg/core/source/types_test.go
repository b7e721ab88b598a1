package source

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"property_dashboard/pkg/models"
)

func TestMergeDealModel(t *testing.T) {
	var bs BundleSet
	bs.MergeDealModel(&models.DealModel{
		RentRoll:    []models.RentRollRow{{UnitNumber: "1A", ProFormaRent: fp(1350)}},
		Loans:       []models.Loan{{Principal: fp(380000)}},
		Assumptions: &models.Assumptions{VacancyRate: fp(0.08)},
	})

	assert.Len(t, bs.RentRolls, 1)
	assert.Equal(t, SourceDealModel, bs.RentRolls[0].Source)
	assert.Len(t, bs.Loans, 1)
	assert.Len(t, bs.Assumptions, 1)
	// Sections the deal model doesn't carry contribute nothing.
	assert.Empty(t, bs.Expenses)
	assert.Empty(t, bs.UnitTypes)
	assert.Empty(t, bs.OtherIncome)
}

func TestMergeDealModel_Nil(t *testing.T) {
	var bs BundleSet
	bs.MergeDealModel(nil)
	assert.Equal(t, BundleSet{}, bs)
}

func TestMergeDefaults_AppendsLowestPriority(t *testing.T) {
	bs := BundleSet{
		Assumptions: []AssumptionsBundle{
			{Source: SourceLive, Values: models.Assumptions{VacancyRate: fp(0.05)}},
		},
	}
	bs.MergeDefaults(models.Assumptions{VacancyRate: fp(0.06), ManagementFeeRate: fp(0.08)})

	assert.Len(t, bs.Assumptions, 2)
	assert.Equal(t, SourceDefault, bs.Assumptions[1].Source)

	// The default never beats a real source, it only fills gaps.
	ra := ResolveAssumptions(bs.Assumptions)
	assert.Equal(t, 0.05, ra.VacancyRate)
	assert.Equal(t, SourceLive, ra.Sources[FieldVacancyRate])
	assert.Equal(t, 0.08, ra.ManagementFeeRate)
	assert.Equal(t, SourceDefault, ra.Sources[FieldManagementFeeRate])
}
