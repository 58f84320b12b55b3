// Copyright 2024 opshive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound       = gorm.ErrRecordNotFound
	ErrCreditNotEnough       = errors.New("积分余额不足")
	ErrServicePaused         = errors.New("账户服务已暂停")
	ErrDuplicatedTransaction = errors.New("积分流水重复")
)

const (
	serviceStatusActive uint8 = 1
	serviceStatusPaused uint8 = 2
)

type CreditDAO interface {
	FindAccountByUID(ctx context.Context, uid int64) (AccountCredit, error)
	// AddCredits 增加积分,账户服务暂停时拒绝
	AddCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error)
	// AddCreditsTx 在外部事务内增加积分,管理路径,不校验服务状态
	AddCreditsTx(tx *gorm.DB, t CreditTransaction) (CreditTransaction, error)
	// SpendCredits 扣减积分,余额不足或服务暂停时拒绝
	SpendCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error)
	// RemoveCredits 管理员强制扣减,只校验余额,不校验服务状态
	RemoveCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error)
	// UpdateServiceStatus 变更服务状态并写入零额审计流水
	UpdateServiceStatus(ctx context.Context, uid int64, status uint8, t CreditTransaction) error
	FindTransactionsByUID(ctx context.Context, uid int64, offset, limit int, f TransactionFilter) ([]CreditTransaction, error)
	TotalTransactionsByUID(ctx context.Context, uid int64, f TransactionFilter) (int64, error)
	FindTransactionBySN(ctx context.Context, sn string) (CreditTransaction, error)
	SumTransactionAmountByUID(ctx context.Context, uid int64) (int64, error)
	FindAccountUIDs(ctx context.Context, offset, limit int) ([]int64, error)
	Stats(ctx context.Context, recentStartTime int64) (StatsResult, error)
}

type TransactionFilter struct {
	Kind      uint8
	StartTime int64
	EndTime   int64
}

type StatsResult struct {
	AccountsWithBalance int64
	OutstandingCredits  int64
	ActiveAccounts      int64
	PausedAccounts      int64
	RecentTransactions  int64
}

type creditDAO struct {
	db *egorm.Component
}

func NewCreditGORMDAO(db *egorm.Component) CreditDAO {
	return &creditDAO{db: db}
}

func (g *creditDAO) FindAccountByUID(ctx context.Context, uid int64) (AccountCredit, error) {
	var res AccountCredit
	err := g.db.WithContext(ctx).First(&res, "uid = ?", uid).Error
	return res, err
}

func (g *creditDAO) AddCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error) {
	var res CreditTransaction
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = g.addCredits(tx, t, true)
		return err
	})
	return res, err
}

func (g *creditDAO) AddCreditsTx(tx *gorm.DB, t CreditTransaction) (CreditTransaction, error) {
	return g.addCredits(tx, t, false)
}

// addCredits 在事务 tx 内完成余额增加与流水写入,二者要么同时生效要么同时回滚
func (g *creditDAO) addCredits(tx *gorm.DB, t CreditTransaction, checkStatus bool) (CreditTransaction, error) {
	now := time.Now().UnixMilli()
	var a AccountCredit
	result := tx.Where(AccountCredit{Uid: t.Uid}).
		Attrs(AccountCredit{ServiceStatus: serviceStatusActive, Ctime: now, Utime: now}).
		FirstOrCreate(&a)
	if result.Error != nil {
		return CreditTransaction{}, fmt.Errorf("查找或创建积分账户失败: %w", result.Error)
	}
	// 暂停校验放在条件更新里,与扣减同款守卫,并发提交的暂停不会被漏判
	cond := tx.Model(&AccountCredit{}).Where("uid = ?", t.Uid)
	if checkStatus {
		cond = cond.Where("service_status = ?", serviceStatusActive)
	}
	updateResult := cond.Updates(map[string]any{
		"balance": gorm.Expr("balance + ?", t.Amount),
		"version": gorm.Expr("version + 1"),
		"utime":   now,
	})
	if updateResult.Error != nil {
		return CreditTransaction{}, fmt.Errorf("更新积分余额失败: %w", updateResult.Error)
	}
	if updateResult.RowsAffected == 0 {
		if checkStatus {
			return CreditTransaction{}, fmt.Errorf("%w: uid=%d", ErrServicePaused, t.Uid)
		}
		return CreditTransaction{}, fmt.Errorf("%w: uid=%d", ErrAccountNotFound, t.Uid)
	}
	return g.createTransaction(tx, t, now)
}

func (g *creditDAO) SpendCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error) {
	return g.deductCredits(ctx, t, true)
}

func (g *creditDAO) RemoveCredits(ctx context.Context, t CreditTransaction) (CreditTransaction, error) {
	return g.deductCredits(ctx, t, false)
}

// deductCredits 扣减的余额校验由条件更新完成,RowsAffected == 0 即余额不足,
// 并发的两次扣减不可能同时通过 balance >= ? 的守卫
func (g *creditDAO) deductCredits(ctx context.Context, t CreditTransaction, checkStatus bool) (CreditTransaction, error) {
	amount := -t.Amount
	var res CreditTransaction
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		cond := tx.Model(&AccountCredit{}).Where("uid = ? AND balance >= ?", t.Uid, amount)
		if checkStatus {
			cond = cond.Where("service_status = ?", serviceStatusActive)
		}
		updateResult := cond.Updates(map[string]any{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
			"utime":   now,
		})
		if updateResult.Error != nil {
			return fmt.Errorf("扣减积分余额失败: %w", updateResult.Error)
		}
		if updateResult.RowsAffected == 0 {
			var a AccountCredit
			if err := tx.First(&a, "uid = ?", t.Uid).Error; err != nil {
				return fmt.Errorf("%w: uid=%d", ErrAccountNotFound, t.Uid)
			}
			if checkStatus && a.ServiceStatus == serviceStatusPaused {
				return fmt.Errorf("%w: uid=%d", ErrServicePaused, t.Uid)
			}
			return fmt.Errorf("%w: 需要%d, 可用%d", ErrCreditNotEnough, amount, a.Balance)
		}
		var err error
		res, err = g.createTransaction(tx, t, now)
		return err
	})
	return res, err
}

func (g *creditDAO) UpdateServiceStatus(ctx context.Context, uid int64, status uint8, t CreditTransaction) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		updateResult := tx.Model(&AccountCredit{}).
			Where("uid = ?", uid).
			Updates(map[string]any{
				"service_status": status,
				"version":        gorm.Expr("version + 1"),
				"utime":          now,
			})
		if updateResult.Error != nil {
			return fmt.Errorf("更新服务状态失败: %w", updateResult.Error)
		}
		if updateResult.RowsAffected == 0 {
			return fmt.Errorf("%w: uid=%d", ErrAccountNotFound, uid)
		}
		_, err := g.createTransaction(tx, t, now)
		return err
	})
}

// createTransaction 写入流水并回填变动后的余额,必须在持有账户行变更的事务内调用
func (g *creditDAO) createTransaction(tx *gorm.DB, t CreditTransaction, now int64) (CreditTransaction, error) {
	var a AccountCredit
	if err := tx.First(&a, "uid = ?", t.Uid).Error; err != nil {
		return CreditTransaction{}, fmt.Errorf("读取变动后余额失败: %w", err)
	}
	t.BalanceAfter = a.Balance
	t.Ctime, t.Utime = now, now
	if err := tx.Create(&t).Error; err != nil {
		if isMySQLUniqueIndexError(err) {
			return CreditTransaction{}, fmt.Errorf("%w: sn=%s", ErrDuplicatedTransaction, t.SN)
		}
		return CreditTransaction{}, fmt.Errorf("创建积分流水失败: %w", err)
	}
	return t, nil
}

func isMySQLUniqueIndexError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		const uniqueIndexErrNo uint16 = 1062
		if me.Number == uniqueIndexErrNo {
			return true
		}
	}
	return false
}

func (g *creditDAO) FindTransactionsByUID(ctx context.Context, uid int64, offset, limit int, f TransactionFilter) ([]CreditTransaction, error) {
	var res []CreditTransaction
	err := g.filteredTransactions(ctx, uid, f).
		Order("ctime DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (g *creditDAO) TotalTransactionsByUID(ctx context.Context, uid int64, f TransactionFilter) (int64, error) {
	var res int64
	err := g.filteredTransactions(ctx, uid, f).Count(&res).Error
	return res, err
}

func (g *creditDAO) filteredTransactions(ctx context.Context, uid int64, f TransactionFilter) *gorm.DB {
	query := g.db.WithContext(ctx).Model(&CreditTransaction{}).Where("uid = ?", uid)
	if f.Kind != 0 {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.StartTime != 0 {
		query = query.Where("ctime >= ?", f.StartTime)
	}
	if f.EndTime != 0 {
		query = query.Where("ctime <= ?", f.EndTime)
	}
	return query
}

func (g *creditDAO) FindTransactionBySN(ctx context.Context, sn string) (CreditTransaction, error) {
	var res CreditTransaction
	err := g.db.WithContext(ctx).First(&res, "sn = ?", sn).Error
	return res, err
}

func (g *creditDAO) SumTransactionAmountByUID(ctx context.Context, uid int64) (int64, error) {
	var res sql.NullInt64
	err := g.db.WithContext(ctx).Model(&CreditTransaction{}).
		Select("SUM(amount)").
		Where("uid = ?", uid).
		Scan(&res).Error
	return res.Int64, err
}

func (g *creditDAO) FindAccountUIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	var res []int64
	err := g.db.WithContext(ctx).Model(&AccountCredit{}).
		Select("uid").
		Order("id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (g *creditDAO) Stats(ctx context.Context, recentStartTime int64) (StatsResult, error) {
	var res StatsResult
	db := g.db.WithContext(ctx)
	if err := db.Model(&AccountCredit{}).Where("balance > 0").Count(&res.AccountsWithBalance).Error; err != nil {
		return res, err
	}
	var outstanding sql.NullInt64
	if err := db.Model(&AccountCredit{}).Select("SUM(balance)").Scan(&outstanding).Error; err != nil {
		return res, err
	}
	res.OutstandingCredits = outstanding.Int64
	if err := db.Model(&AccountCredit{}).Where("service_status = ?", serviceStatusActive).Count(&res.ActiveAccounts).Error; err != nil {
		return res, err
	}
	if err := db.Model(&AccountCredit{}).Where("service_status = ?", serviceStatusPaused).Count(&res.PausedAccounts).Error; err != nil {
		return res, err
	}
	err := db.Model(&CreditTransaction{}).Where("ctime >= ?", recentStartTime).Count(&res.RecentTransactions).Error
	return res, err
}

type AccountCredit struct {
	Id            int64 `gorm:"primaryKey;autoIncrement;comment:积分账户自增ID"`
	Uid           int64 `gorm:"not null;uniqueIndex:unq_uid,comment:用户ID"`
	Balance       int64 `gorm:"not null;default:0;comment:可用积分余额"`
	ServiceStatus uint8 `gorm:"type:tinyint unsigned;not null;default:1;comment:服务状态 1=正常 2=暂停"`
	Version       int64 `gorm:"not null;default:1;comment:版本号"`
	Ctime         int64
	Utime         int64
}

type CreditTransaction struct {
	Id     int64  `gorm:"primaryKey;autoIncrement;comment:积分流水自增ID"`
	SN     string `gorm:"type:varchar(64);not null;uniqueIndex:unq_transaction_sn;comment:流水序列号"`
	Uid    int64  `gorm:"not null;index:idx_uid,comment:用户ID"`
	Amount int64  `gorm:"not null;comment:积分变动数量,正数为增加,负数为扣减"`
	Kind   uint8  `gorm:"type:tinyint unsigned;not null;comment:流水类型 1=消耗 2=订阅 3=管理员调整 4=争议补偿 5=购买 6=服务状态审计"`
	Biz    string `gorm:"type:varchar(64);not null;default:'';comment:关联业务"`
	BizId  int64  `gorm:"not null;default:0;index:idx_biz_id,comment:关联业务ID"`
	Desc   string `gorm:"type:varchar(255);not null;comment:流水描述"`
	// AmountUSD 按积分单价折算的美元金额
	AmountUSD    sql.NullString `gorm:"type:decimal(19,4);comment:折算美元金额"`
	PaymentRef   sql.NullString `gorm:"type:varchar(255);comment:外部支付引用"`
	Metadata     string         `gorm:"type:varchar(2048);not null;default:'{}';comment:来源元数据,JSON格式"`
	BalanceAfter int64          `gorm:"not null;comment:变动后积分余额"`
	Ctime        int64
	Utime        int64
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(
		&AccountCredit{},
		&CreditTransaction{},
	)
}
