package entities

import "quarry/internal/shared/hrn"

// OrganizationalUnit is a node of the organization tree. A root unit has a
// zero ParentHrn. Children and attachments are tracked by hrn string.
type OrganizationalUnit struct {
	Hrn           hrn.Hrn
	ParentHrn     hrn.Hrn
	Name          string
	ChildOus      map[string]struct{}
	ChildAccounts map[string]struct{}
	AttachedScps  map[string]struct{}
}

// NewOrganizationalUnit builds a unit with empty child and attachment sets.
func NewOrganizationalUnit(selfHrn, parentHrn hrn.Hrn, name string) OrganizationalUnit {
	return OrganizationalUnit{
		Hrn:           selfHrn,
		ParentHrn:     parentHrn,
		Name:          name,
		ChildOus:      make(map[string]struct{}),
		ChildAccounts: make(map[string]struct{}),
		AttachedScps:  make(map[string]struct{}),
	}
}

// IsRoot reports whether the unit has no parent.
func (u OrganizationalUnit) IsRoot() bool {
	return u.ParentHrn.IsZero()
}

func (u *OrganizationalUnit) AddChildOu(child hrn.Hrn) {
	if u.ChildOus == nil {
		u.ChildOus = make(map[string]struct{})
	}
	u.ChildOus[child.String()] = struct{}{}
}

func (u *OrganizationalUnit) AddChildAccount(account hrn.Hrn) {
	if u.ChildAccounts == nil {
		u.ChildAccounts = make(map[string]struct{})
	}
	u.ChildAccounts[account.String()] = struct{}{}
}

func (u *OrganizationalUnit) RemoveChildAccount(account hrn.Hrn) {
	delete(u.ChildAccounts, account.String())
}

// HasChildAccount reports direct membership of the account in this unit.
func (u OrganizationalUnit) HasChildAccount(account hrn.Hrn) bool {
	_, ok := u.ChildAccounts[account.String()]
	return ok
}

func (u *OrganizationalUnit) AttachScp(scp hrn.Hrn) {
	if u.AttachedScps == nil {
		u.AttachedScps = make(map[string]struct{})
	}
	u.AttachedScps[scp.String()] = struct{}{}
}

func (u *OrganizationalUnit) DetachScp(scp hrn.Hrn) {
	delete(u.AttachedScps, scp.String())
}
