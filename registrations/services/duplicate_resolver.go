package services

import (
	"context"
	"fmt"
	"strings"
)

// ContactLookup answers whether an email or mobile number is already held by
// a stored registration. Blank arguments never match.
type ContactLookup interface {
	ContactExists(ctx context.Context, email, mobileNumber string) (emailTaken, mobileTaken bool, err error)
}

// DuplicateMatch describes why a candidate was judged a duplicate.
type DuplicateMatch struct {
	MatchedOn []string
	Source    string
}

// DuplicateResolver checks candidates against the store and against the
// records created earlier in the same run. Create one per run.
type DuplicateResolver struct {
	lookup      ContactLookup
	seenEmails  map[string]struct{}
	seenMobiles map[string]struct{}
}

func NewDuplicateResolver(lookup ContactLookup) *DuplicateResolver {
	return &DuplicateResolver{
		lookup:      lookup,
		seenEmails:  make(map[string]struct{}),
		seenMobiles: make(map[string]struct{}),
	}
}

// IsDuplicate reports whether the candidate's email or mobile number is taken.
// Records registered in this run are checked before the store.
func (r *DuplicateResolver) IsDuplicate(ctx context.Context, c CandidateRecord) (DuplicateMatch, bool, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	mobile := strings.TrimSpace(c.MobileNumber)

	var matched []string
	if _, ok := r.seenEmails[email]; ok && email != "" {
		matched = append(matched, FieldEmail)
	}
	if _, ok := r.seenMobiles[mobile]; ok && mobile != "" {
		matched = append(matched, FieldMobileNumber)
	}
	if len(matched) > 0 {
		return DuplicateMatch{MatchedOn: matched, Source: DuplicateSourceBatch}, true, nil
	}

	if email == "" && mobile == "" {
		return DuplicateMatch{}, false, nil
	}

	emailTaken, mobileTaken, err := r.lookup.ContactExists(ctx, email, mobile)
	if err != nil {
		return DuplicateMatch{}, false, fmt.Errorf("duplicate lookup failed: %w", err)
	}
	if emailTaken {
		matched = append(matched, FieldEmail)
	}
	if mobileTaken {
		matched = append(matched, FieldMobileNumber)
	}
	if len(matched) > 0 {
		return DuplicateMatch{MatchedOn: matched, Source: DuplicateSourceExisting}, true, nil
	}
	return DuplicateMatch{}, false, nil
}

// Register records a candidate created in this run so later rows see it.
func (r *DuplicateResolver) Register(c CandidateRecord) {
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		r.seenEmails[email] = struct{}{}
	}
	if mobile := strings.TrimSpace(c.MobileNumber); mobile != "" {
		r.seenMobiles[mobile] = struct{}{}
	}
}
