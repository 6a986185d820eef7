package service

import (
	"time"

	"github.com/spec-kit/credit-service/internal/domain"
)

// Policy adjustments in minor currency units.
const (
	fullNameBonus     int64 = 1_000_00
	highIncomeBonus   int64 = 100_000_00
	midIncomeBonus    int64 = 10_000_00
	lowIncomeBonus    int64 = 1_000_00
	highIncomeFloor   int64 = 300_000_00
	midIncomeFloor    int64 = 100_000_00
	noOtherLoansBonus int64 = 10_000_00
	otherLoansPenalty int64 = 10_000_00
	workingAgeBonus   int64 = 2_000_00
	ageRiskPenalty    int64 = 5_000_00
	maleBonus         int64 = 1_000_00
	otherSexBonus     int64 = 2_000_00
	verifiedDocBonus  int64 = 5_000_00
	verifiedFaceBonus int64 = 5_000_00
)

const (
	minApprovedAge = 18
	maxApprovedAge = 60
)

// LimitPolicy computes the credit limit a profile is entitled to.
type LimitPolicy struct {
	defaultLimit int64
	now          func() time.Time
}

// NewLimitPolicy builds a policy seeded at defaultLimit. A nil clock uses time.Now.
func NewLimitPolicy(defaultLimit int64, now func() time.Time) *LimitPolicy {
	if now == nil {
		now = time.Now
	}
	return &LimitPolicy{defaultLimit: defaultLimit, now: now}
}

// DefaultLimit returns the floor every approval is clamped to.
func (p *LimitPolicy) DefaultLimit() int64 {
	return p.defaultLimit
}

// Approve returns the limit granted for requested given the profile. The result never
// exceeds requested unless requested is below the default floor, and never drops below
// the floor.
func (p *LimitPolicy) Approve(requested int64, profile domain.UserProfile) int64 {
	available := p.Entitlement(profile)
	return max(min(available, requested), p.defaultLimit)
}

// Entitlement is the unclamped sum of the default limit and every adjustment.
func (p *LimitPolicy) Entitlement(profile domain.UserProfile) int64 {
	available := p.defaultLimit

	if profile.FullName != nil && *profile.FullName != "" {
		available += fullNameBonus
	}

	if profile.Income != nil {
		switch income := *profile.Income; {
		case income >= highIncomeFloor:
			available += highIncomeBonus
		case income >= midIncomeFloor:
			available += midIncomeBonus
		default:
			available += lowIncomeBonus
		}
	}

	if profile.AnotherLoans != nil {
		if *profile.AnotherLoans {
			available -= otherLoansPenalty
		} else {
			available += noOtherLoansBonus
		}
	}

	if profile.BirthDate != nil {
		age := ageInYears(*profile.BirthDate, p.now())
		if age > maxApprovedAge || age < minApprovedAge {
			available -= ageRiskPenalty
		} else {
			available += workingAgeBonus
		}
	}

	if profile.Sex != nil {
		if *profile.Sex == domain.SexMale {
			available += maleBonus
		} else {
			available += otherSexBonus
		}
	}

	if profile.DocumentVerified {
		available += verifiedDocBonus
	}
	if profile.FaceVerified {
		available += verifiedFaceBonus
	}

	return available
}

// ageInYears counts completed years between the birth date and the calendar date of
// at in at's own zone. The birthday itself counts as completed; a Feb 29 birthday
// falls on Feb 28 in non-leap years.
func ageInYears(birth, at time.Time) int {
	by, bm, bd := birth.Date()
	y, m, d := at.Date()

	years := y - by
	anniversary := min(bd, daysIn(y, bm))
	if m < bm || (m == bm && d < anniversary) {
		years--
	}
	return years
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
