package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDepartments_FinanceAndTradingBaseline(t *testing.T) {
	policy := DefaultPolicy()

	depts := policy.ResolveDepartments(nil)
	assert.Equal(t, []DepartmentCode{DepartmentFinance, DepartmentTrading}, depts)
}

func TestResolveDepartments_ProductIncentiveMix(t *testing.T) {
	policy := DefaultPolicy()

	depts := policy.ResolveDepartments([]IncentiveLineItem{
		{Type: "financial_incentive"},
		{Type: "product_incentive"},
	})

	assert.Equal(t, []DepartmentCode{DepartmentFinance, DepartmentProduct, DepartmentTrading}, depts)
}

func TestResolveDepartments_UnknownAndEmptyTagsIgnored(t *testing.T) {
	policy := DefaultPolicy()

	depts := policy.ResolveDepartments([]IncentiveLineItem{
		{Type: ""},
		{Type: "free_lunch"},
		{Description: "no type at all"},
	})

	assert.Equal(t, []DepartmentCode{DepartmentFinance, DepartmentTrading}, depts)
}

func TestResolveDepartments_DuplicatesCollapse(t *testing.T) {
	policy := DefaultPolicy()

	depts := policy.ResolveDepartments([]IncentiveLineItem{
		{Type: "creative_incentive"},
		{Type: "creative_incentive"},
		{Type: "added_value_media"},
	})

	assert.Equal(t, []DepartmentCode{DepartmentCreative, DepartmentFinance, DepartmentTrading}, depts)
}

func TestResolveDepartments_AllDepartments(t *testing.T) {
	policy := DefaultPolicy()

	depts := policy.ResolveDepartments([]IncentiveLineItem{
		{Type: "financial_incentive"},
		{Type: "margin_incentive"},
		{Type: "product_incentive"},
		{Type: "creative_incentive"},
		{Type: "data_incentive"},
	})

	assert.Equal(t, []DepartmentCode{
		DepartmentAnalytics,
		DepartmentCreative,
		DepartmentFinance,
		DepartmentProduct,
		DepartmentTrading,
	}, depts)
}
