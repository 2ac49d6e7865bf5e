package entities

import "quarry/internal/shared/hrn"

// Account is a leaf member of the organization tree. ParentHrn points at the
// unit the account currently belongs to; it changes only through the account
// mover. Accounts carry their own control-policy attachments and are valid
// starting points for the effective-policy walk.
type Account struct {
	Hrn          hrn.Hrn
	ParentHrn    hrn.Hrn
	Name         string
	AttachedScps map[string]struct{}
}

// NewAccount builds an account attached to the given parent unit.
func NewAccount(selfHrn, parentHrn hrn.Hrn, name string) Account {
	return Account{
		Hrn:          selfHrn,
		ParentHrn:    parentHrn,
		Name:         name,
		AttachedScps: make(map[string]struct{}),
	}
}

func (a *Account) AttachScp(scp hrn.Hrn) {
	if a.AttachedScps == nil {
		a.AttachedScps = make(map[string]struct{})
	}
	a.AttachedScps[scp.String()] = struct{}{}
}

func (a *Account) DetachScp(scp hrn.Hrn) {
	delete(a.AttachedScps, scp.String())
}

// SetParent repoints the account at a new unit.
func (a *Account) SetParent(parent hrn.Hrn) {
	a.ParentHrn = parent
}
