package models

// IntegrationGrant is a stored (installation, access token) pair accumulated
// across repeated authorization flows. Grants are addressed by a dense
// 1-based index; the first missing index terminates any scan.
type IntegrationGrant struct {
	Index          int    `json:"index" badgerhold:"key"` // 1-based, dense, no gaps
	InstallationID string `json:"installation_id"`
	AccessToken    string `json:"access_token"`
	CreatedAt      int64  `json:"created_at"`
}
