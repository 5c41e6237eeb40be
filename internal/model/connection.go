package model

// Connection is one authorized link to a business entity on the accounting
// provider. Token refresh is the source collaborator's concern; the core only
// needs identity and labels.
type Connection struct {
	ID           int    `json:"id"`
	TenantID     string `json:"tenant_id"`
	TenantName   string `json:"tenant_name"`
	BusinessUnit string `json:"business_unit"`
	AccessToken  string `json:"-"`
	Active       bool   `json:"active"`
}
