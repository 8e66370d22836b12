package domain

// Portfolio is a named grouping of holdings and transactions.
type Portfolio struct {
	ID          int64  `json:"id" db:"id"`
	TenantID    int64  `json:"tenant_id" db:"tenant_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Currency    string `json:"currency" db:"currency"`
	Timestamps
}

func (p *Portfolio) EntityType() EntityType { return EntityPortfolio }
func (p *Portfolio) GetID() int64           { return p.ID }
func (p *Portfolio) GetTenantID() int64     { return p.TenantID }
func (p *Portfolio) sealed()                {}

func (p *Portfolio) Assign(id, tenantID int64) {
	p.ID, p.TenantID = id, tenantID
}

func (p *Portfolio) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	p.Currency = NormalizeCurrency(p.Currency)
	return ValidateCurrency(p.Currency)
}
