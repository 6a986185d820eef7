package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/credit-service/internal/domain"
)

const (
	testDefaultLimit int64 = 20_000_00
	largeRequest     int64 = 500_000_00
)

var policyNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedPolicy() *LimitPolicy {
	return NewLimitPolicy(testDefaultLimit, func() time.Time { return policyNow })
}

func ptr[T any](v T) *T { return &v }

func yearsAgo(years, plusDays int) *time.Time {
	d := time.Date(policyNow.Year()-years, policyNow.Month(), policyNow.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, plusDays)
	return &d
}

func TestApproveTable(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.UserProfile
		want    int64
	}{
		{name: "empty profile", profile: domain.UserProfile{}, want: 20_000_00},
		{name: "full name", profile: domain.UserProfile{FullName: ptr("Ada Lovelace")}, want: 21_000_00},
		{name: "empty full name", profile: domain.UserProfile{FullName: ptr("")}, want: 20_000_00},
		{name: "income above high floor", profile: domain.UserProfile{Income: ptr[int64](500_000_00)}, want: 120_000_00},
		{name: "income at high floor", profile: domain.UserProfile{Income: ptr[int64](300_000_00)}, want: 120_000_00},
		{name: "income above mid floor", profile: domain.UserProfile{Income: ptr[int64](200_000_00)}, want: 30_000_00},
		{name: "income at mid floor", profile: domain.UserProfile{Income: ptr[int64](100_000_00)}, want: 30_000_00},
		{name: "small income", profile: domain.UserProfile{Income: ptr[int64](100_00)}, want: 21_000_00},
		{name: "zero income", profile: domain.UserProfile{Income: ptr[int64](0)}, want: 21_000_00},
		{name: "no other loans", profile: domain.UserProfile{AnotherLoans: ptr(false)}, want: 30_000_00},
		{name: "other loans floored", profile: domain.UserProfile{AnotherLoans: ptr(true)}, want: 20_000_00},
		{
			name:    "high income with other loans",
			profile: domain.UserProfile{Income: ptr[int64](300_000_00), AnotherLoans: ptr(true)},
			want:    110_000_00,
		},
		{name: "under 18 floored", profile: domain.UserProfile{BirthDate: yearsAgo(15, 0)}, want: 20_000_00},
		{
			name:    "mid income under 18",
			profile: domain.UserProfile{Income: ptr[int64](100_000_00), BirthDate: yearsAgo(15, 0)},
			want:    25_000_00,
		},
		{name: "one day before 18", profile: domain.UserProfile{BirthDate: yearsAgo(18, 1)}, want: 20_000_00},
		{name: "exactly 18", profile: domain.UserProfile{BirthDate: yearsAgo(18, 0)}, want: 22_000_00},
		{name: "exactly 60", profile: domain.UserProfile{BirthDate: yearsAgo(60, 0)}, want: 22_000_00},
		{name: "61", profile: domain.UserProfile{BirthDate: yearsAgo(61, 0)}, want: 20_000_00},
		{name: "male", profile: domain.UserProfile{Sex: ptr(domain.SexMale)}, want: 21_000_00},
		{name: "female", profile: domain.UserProfile{Sex: ptr(domain.SexFemale)}, want: 22_000_00},
		{name: "document verified", profile: domain.UserProfile{DocumentVerified: true}, want: 25_000_00},
		{name: "face verified", profile: domain.UserProfile{FaceVerified: true}, want: 25_000_00},
		{
			name: "everything",
			profile: domain.UserProfile{
				FullName:         ptr("Ada Lovelace"),
				Income:           ptr[int64](300_000_00),
				AnotherLoans:     ptr(false),
				BirthDate:        yearsAgo(30, 0),
				Sex:              ptr(domain.SexFemale),
				DocumentVerified: true,
				FaceVerified:     true,
			},
			want: 20_000_00 + 1_000_00 + 100_000_00 + 10_000_00 + 2_000_00 + 2_000_00 + 5_000_00 + 5_000_00,
		},
	}

	policy := fixedPolicy()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Approve(largeRequest, tc.profile))
		})
	}
}

func TestApproveScenarios(t *testing.T) {
	policy := fixedPolicy()

	got := policy.Approve(500_000_00, domain.UserProfile{Income: ptr[int64](300_000_00), AnotherLoans: ptr(true)})
	assert.Equal(t, int64(110_000_00), got)

	assert.Equal(t, testDefaultLimit, policy.Approve(10_000_00, domain.UserProfile{}))
}

func TestApproveClampsToRequested(t *testing.T) {
	policy := fixedPolicy()
	rich := domain.UserProfile{Income: ptr[int64](1_000_000_00), DocumentVerified: true}

	assert.Equal(t, int64(50_000_00), policy.Approve(50_000_00, rich))

	for _, requested := range []int64{testDefaultLimit, 25_000_00, 100_000_00, largeRequest} {
		got := policy.Approve(requested, rich)
		assert.GreaterOrEqual(t, got, testDefaultLimit)
		assert.LessOrEqual(t, got, requested)
	}
}

func TestEmptyProfileAlwaysGetsDefault(t *testing.T) {
	policy := fixedPolicy()
	for _, requested := range []int64{1, 1_000_00, testDefaultLimit, largeRequest} {
		assert.Equal(t, testDefaultLimit, policy.Approve(requested, domain.UserProfile{}))
	}
}

func TestPositiveAttributesAreMonotonic(t *testing.T) {
	policy := fixedPolicy()
	base := policy.Approve(largeRequest, domain.UserProfile{})

	profiles := []domain.UserProfile{
		{FullName: ptr("Ada Lovelace")},
		{Income: ptr[int64](1)},
		{AnotherLoans: ptr(false)},
		{DocumentVerified: true},
		{FaceVerified: true},
	}
	for _, p := range profiles {
		assert.GreaterOrEqual(t, policy.Approve(largeRequest, p), base)
	}
}

func TestAgeInYears(t *testing.T) {
	birth := time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 23, ageInYears(birth, time.Date(2024, time.February, 28, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, ageInYears(birth, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 22, ageInYears(birth, time.Date(2023, time.February, 27, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 23, ageInYears(birth, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 23, ageInYears(birth, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLeapDayBirthdayReachesAdulthoodOnFeb28(t *testing.T) {
	birth := time.Date(2004, time.February, 29, 0, 0, 0, 0, time.UTC)
	policy := NewLimitPolicy(testDefaultLimit, func() time.Time {
		return time.Date(2022, time.February, 28, 12, 0, 0, 0, time.UTC)
	})

	assert.Equal(t, 18, ageInYears(birth, time.Date(2022, time.February, 28, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, testDefaultLimit+workingAgeBonus, policy.Entitlement(domain.UserProfile{BirthDate: &birth}))
}

func TestAgeUsesCalendarDateOfClockZone(t *testing.T) {
	birth := time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC)
	zone := time.FixedZone("UTC+5", 5*60*60)

	// 01:00 on June 15 locally is still June 14 in UTC.
	at := time.Date(2024, time.June, 15, 1, 0, 0, 0, zone)
	assert.Equal(t, 18, ageInYears(birth, at))

	west := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, 17, ageInYears(birth, time.Date(2024, time.June, 14, 22, 0, 0, 0, west)))
}

func TestNilClockUsesWallTime(t *testing.T) {
	policy := NewLimitPolicy(testDefaultLimit, nil)
	birth := time.Now().AddDate(-30, 0, 0)

	assert.Equal(t, testDefaultLimit+workingAgeBonus, policy.Approve(largeRequest, domain.UserProfile{BirthDate: &birth}))
}
