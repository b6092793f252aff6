package models

// UserIdentity is the authenticated user as reported by the identity
// provider. Immutable once fetched.
type UserIdentity struct {
	ExternalID int64  `json:"external_id"` // provider-assigned numeric id
	Login      string `json:"login"`       // provider login / display name
	Email      string `json:"email"`       // "N/A" when the provider withholds it
}

// Session represents an issued session. The SessionID is the bearer for all
// subsequent session-scoped calls; lifecycle ends at backend expiry or
// explicit sign-out.
type Session struct {
	SessionID  string `json:"session_id"`
	ExternalID int64  `json:"external_id"`
	Username   string `json:"username"`
}

// User is the backend record registered once per successful authorization.
// Registration is an idempotent upsert keyed by ExternalID.
type User struct {
	ExternalID int64  `json:"external_id" badgerhold:"key"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	SessionID  string `json:"session_id" badgerhold:"index"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}
