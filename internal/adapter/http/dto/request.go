package dto

import (
	"fmt"

	"github.com/iho/ledgersync/internal/domain"
)

// Entity create and update requests decode straight into the domain
// entities; id, tenant_id and timestamps in a request body are ignored.

// RegisterCompanyRequest maps a tenant to an ERP company.
type RegisterCompanyRequest struct {
	TenantID  int64 `json:"tenant_id"`
	CompanyID int64 `json:"company_id"`
}

// Validate checks both ids are set.
func (r *RegisterCompanyRequest) Validate() error {
	if r.TenantID <= 0 {
		return fmt.Errorf("%w: tenant_id is required", domain.ErrMissingReference)
	}
	if r.CompanyID <= 0 {
		return fmt.Errorf("%w: company_id is required", domain.ErrMissingReference)
	}
	return nil
}
