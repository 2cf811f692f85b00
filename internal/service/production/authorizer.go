package production

import "context"

// Workflow actions an operator can be authorized for. The three stage names
// match models.Stage; receiving is its own capability.
const (
	ActionExtrusion = "extrusion"
	ActionPrinting  = "printing"
	ActionCutting   = "cutting"
	ActionReceive   = "receive"
)

// Authorizer is the capability gate consulted before every mutating workflow
// command. The engine itself never checks permissions.
type Authorizer interface {
	CanRecord(ctx context.Context, operatorID, section, action string) (bool, error)
}

// AllowAll grants every operator every action. It stands in until the
// surrounding application's permission service is wired.
type AllowAll struct{}

// CanRecord always grants.
func (AllowAll) CanRecord(context.Context, string, string, string) (bool, error) {
	return true, nil
}

// SectionAuthorizer restricts operators to their assigned sections, regardless
// of action.
type SectionAuthorizer map[string][]string

// CanRecord grants when the operator is assigned to the roll's section.
func (a SectionAuthorizer) CanRecord(_ context.Context, operatorID, section, _ string) (bool, error) {
	for _, assigned := range a[operatorID] {
		if assigned == section {
			return true, nil
		}
	}
	return false, nil
}
