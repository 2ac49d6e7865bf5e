package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed hierarchy adapter. The unit of work maps
// directly onto a database transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type ouModel struct {
	Hrn           string `gorm:"column:hrn;primaryKey"`
	ParentHrn     string `gorm:"column:parent_hrn;index"`
	Name          string `gorm:"column:name"`
	ChildOus      string `gorm:"column:child_ous"`
	ChildAccounts string `gorm:"column:child_accounts"`
	AttachedScps  string `gorm:"column:attached_scps"`
}

func (ouModel) TableName() string { return "org_units" }

type accountModel struct {
	Hrn          string `gorm:"column:hrn;primaryKey"`
	ParentHrn    string `gorm:"column:parent_hrn;index"`
	Name         string `gorm:"column:name"`
	AttachedScps string `gorm:"column:attached_scps"`
}

func (accountModel) TableName() string { return "org_accounts" }

type scpModel struct {
	Hrn      string `gorm:"column:hrn;primaryKey"`
	Name     string `gorm:"column:name"`
	Document string `gorm:"column:document"`
}

func (scpModel) TableName() string { return "org_scps" }

func joinSet(set map[string]struct{}) string {
	items := make([]string, 0, len(set))
	for key := range set {
		items = append(items, key)
	}
	return strings.Join(items, "\n")
}

func splitSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	if raw == "" {
		return set
	}
	for _, item := range strings.Split(raw, "\n") {
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

func toOuModel(unit entities.OrganizationalUnit) ouModel {
	return ouModel{
		Hrn:           unit.Hrn.String(),
		ParentHrn:     unit.ParentHrn.String(),
		Name:          unit.Name,
		ChildOus:      joinSet(unit.ChildOus),
		ChildAccounts: joinSet(unit.ChildAccounts),
		AttachedScps:  joinSet(unit.AttachedScps),
	}
}

func (m ouModel) toEntity() entities.OrganizationalUnit {
	self, _ := hrn.Parse(m.Hrn)
	parent, _ := hrn.Parse(m.ParentHrn)
	return entities.OrganizationalUnit{
		Hrn:           self,
		ParentHrn:     parent,
		Name:          m.Name,
		ChildOus:      splitSet(m.ChildOus),
		ChildAccounts: splitSet(m.ChildAccounts),
		AttachedScps:  splitSet(m.AttachedScps),
	}
}

func toAccountModel(account entities.Account) accountModel {
	return accountModel{
		Hrn:          account.Hrn.String(),
		ParentHrn:    account.ParentHrn.String(),
		Name:         account.Name,
		AttachedScps: joinSet(account.AttachedScps),
	}
}

func (m accountModel) toEntity() entities.Account {
	self, _ := hrn.Parse(m.Hrn)
	parent, _ := hrn.Parse(m.ParentHrn)
	return entities.Account{
		Hrn:          self,
		ParentHrn:    parent,
		Name:         m.Name,
		AttachedScps: splitSet(m.AttachedScps),
	}
}

func findOu(db *gorm.DB, ctx context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error) {
	var row ouModel
	err := db.WithContext(ctx).
		Where("hrn = ?", id.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OrganizationalUnit{}, domainerrors.ErrOuNotFound
		}
		return entities.OrganizationalUnit{}, err
	}
	return row.toEntity(), nil
}

func saveOu(db *gorm.DB, ctx context.Context, unit entities.OrganizationalUnit) error {
	row := toOuModel(unit)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hrn"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func findAccount(db *gorm.DB, ctx context.Context, id hrn.Hrn) (entities.Account, error) {
	var row accountModel
	err := db.WithContext(ctx).
		Where("hrn = ?", id.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

func saveAccount(db *gorm.DB, ctx context.Context, account entities.Account) error {
	row := toAccountModel(account)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hrn"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) FindOuByHrn(ctx context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error) {
	return findOu(r.db, ctx, id)
}

func (r *Repository) SaveOu(ctx context.Context, unit entities.OrganizationalUnit) error {
	return saveOu(r.db, ctx, unit)
}

func (r *Repository) FindAccountByHrn(ctx context.Context, id hrn.Hrn) (entities.Account, error) {
	return findAccount(r.db, ctx, id)
}

func (r *Repository) SaveAccount(ctx context.Context, account entities.Account) error {
	return saveAccount(r.db, ctx, account)
}

func (r *Repository) FindScpByHrn(ctx context.Context, id hrn.Hrn) (entities.ServiceControlPolicy, error) {
	var row scpModel
	err := r.db.WithContext(ctx).
		Where("hrn = ?", id.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ServiceControlPolicy{}, domainerrors.ErrScpNotFound
		}
		return entities.ServiceControlPolicy{}, err
	}
	self, _ := hrn.Parse(row.Hrn)
	return entities.ServiceControlPolicy{
		Hrn:      self,
		Name:     row.Name,
		Document: row.Document,
	}, nil
}

func (r *Repository) SaveScp(ctx context.Context, scp entities.ServiceControlPolicy) error {
	row := scpModel{
		Hrn:      scp.Hrn.String(),
		Name:     scp.Name,
		Document: scp.Document,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hrn"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

// Begin opens a database transaction wrapped as a unit of work.
func (r *Repository) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &txUnitOfWork{tx: tx}, nil
}

type txUnitOfWork struct {
	tx *gorm.DB
}

func (u *txUnitOfWork) Ous() ports.OuRepository           { return u }
func (u *txUnitOfWork) Accounts() ports.AccountRepository { return u }

func (u *txUnitOfWork) FindOuByHrn(ctx context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error) {
	return findOu(u.tx, ctx, id)
}

func (u *txUnitOfWork) SaveOu(ctx context.Context, unit entities.OrganizationalUnit) error {
	return saveOu(u.tx, ctx, unit)
}

func (u *txUnitOfWork) FindAccountByHrn(ctx context.Context, id hrn.Hrn) (entities.Account, error) {
	return findAccount(u.tx, ctx, id)
}

func (u *txUnitOfWork) SaveAccount(ctx context.Context, account entities.Account) error {
	return saveAccount(u.tx, ctx, account)
}

func (u *txUnitOfWork) Commit(context.Context) error {
	return u.tx.Commit().Error
}

func (u *txUnitOfWork) Rollback(context.Context) error {
	return u.tx.Rollback().Error
}
