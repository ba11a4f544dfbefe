package domain

// SubjectID is the authenticated subject carried in a signed token (the "sub" claim).
// Tokens issued by this service use the UserID as the subject.
type SubjectID string

// MemberID is an internal identifier for a community-member record.
type MemberID string

// UserID is an internal identifier for an account that can sign in.
type UserID string
