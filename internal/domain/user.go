package domain

import "time"

// Sex enumerates the values accepted for a user's sex.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether the value is one of the known enum members.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// User is the domain model for card holders.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	FullName         *string
	Income           *int64
	AnotherLoans     *bool
	BirthDate        *time.Time
	Sex              *Sex
	DocumentVerified bool
	FaceVerified     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserProfile is the subset of user attributes the limit policy reads.
// Nil pointers mean "unknown".
type UserProfile struct {
	FullName         *string
	Income           *int64
	AnotherLoans     *bool
	BirthDate        *time.Time
	Sex              *Sex
	DocumentVerified bool
	FaceVerified     bool
}

// Profile snapshots the policy-relevant attributes.
func (u *User) Profile() UserProfile {
	return UserProfile{
		FullName:         u.FullName,
		Income:           u.Income,
		AnotherLoans:     u.AnotherLoans,
		BirthDate:        u.BirthDate,
		Sex:              u.Sex,
		DocumentVerified: u.DocumentVerified,
		FaceVerified:     u.FaceVerified,
	}
}

// ProfilePatch carries a partial profile update. A field is applied only when its
// Set flag is true; a set field with a nil value clears the stored attribute.
type ProfilePatch struct {
	FullName     OptionalField[string]
	Income       OptionalField[int64]
	AnotherLoans OptionalField[bool]
	BirthDate    OptionalField[time.Time]
	Sex          OptionalField[Sex]
}

// OptionalField distinguishes "absent" from "explicitly null".
type OptionalField[T any] struct {
	Set   bool
	Value *T
}

// Apply writes every set field of the patch onto the user.
func (p ProfilePatch) Apply(u *User) {
	if p.FullName.Set {
		u.FullName = p.FullName.Value
	}
	if p.Income.Set {
		u.Income = p.Income.Value
	}
	if p.AnotherLoans.Set {
		u.AnotherLoans = p.AnotherLoans.Value
	}
	if p.BirthDate.Set {
		u.BirthDate = p.BirthDate.Value
	}
	if p.Sex.Set {
		u.Sex = p.Sex.Value
	}
}
