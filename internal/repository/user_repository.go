package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByLogin(login string) (*models.User, error)
	CountByUsername(username string) (int64, error)
	CountByEmail(email string) (int64, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateFields(id uint, updates map[string]interface{}) error
	AddExp(id uint, delta int) (bool, error)
	GetExp(id uint) (int, bool, error)
	ConsumeVerifyToken(token string) (*models.User, error)
	UpdateKYCStatus(id uint, status models.KYCStatus) error
	ListTopByExp(limit int) ([]models.User, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	BatchUpdateStatus(userIDs []uint, status string) error
	WithTx(tx *gorm.DB) *GormUserRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Transaction 执行事务
func (r *GormUserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormUserRepository) first(query *gorm.DB) (*models.User, error) {
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDForUpdate 加锁获取用户（sqlite 忽略行锁）
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// GetByUsername 根据用户名获取用户（不区分大小写）
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return r.first(r.db.Where("LOWER(username) = ?", strings.ToLower(username)))
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return r.first(r.db.Where("email = ?", strings.ToLower(email)))
}

// GetByLogin 按用户名或邮箱获取用户
func (r *GormUserRepository) GetByLogin(login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		return r.GetByEmail(login)
	}
	return r.GetByUsername(login)
}

// CountByUsername 统计用户名占用（含软删除记录，唯一索引同样覆盖）
func (r *GormUserRepository) CountByUsername(username string) (int64, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.User{}).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count, err
}

// CountByEmail 统计邮箱占用
func (r *GormUserRepository) CountByEmail(email string) (int64, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count, err
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateFields 按字段更新用户
func (r *GormUserRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// AddExp 原子调整经验值，结果最低为 0；返回用户是否存在
func (r *GormUserRepository) AddExp(id uint, delta int) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("exp", gorm.Expr(clampedAddExpr("exp"), delta, delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetExp 读取经验值
func (r *GormUserRepository) GetExp(id uint) (int, bool, error) {
	var rows []int
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("exp", &rows).Error; err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0], true, nil
}

// ConsumeVerifyToken 兑换一次性验证令牌：令牌置空与标记已验证在同一条语句完成
// 令牌不存在或已被并发兑换返回 (nil, nil)。
func (r *GormUserRepository) ConsumeVerifyToken(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	user, err := r.first(r.db.Where("verify_token = ?", token))
	if err != nil || user == nil {
		return nil, err
	}
	now := time.Now()
	result := r.db.Model(&models.User{}).
		Where("id = ? AND verify_token = ?", user.ID, token).
		Updates(map[string]interface{}{
			"verify_token":      nil,
			"email_verified":    true,
			"email_verified_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	user.VerifyToken = nil
	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	return user, nil
}

// UpdateKYCStatus 更新用户实名状态
func (r *GormUserRepository) UpdateKYCStatus(id uint, status models.KYCStatus) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("kyc_status", status).Error
}

// ListTopByExp 按经验值倒序取前 N 名活跃用户
func (r *GormUserRepository) ListTopByExp(limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []models.User
	err := r.db.Model(&models.User{}).
		Where("status = ?", constants.UserStatusActive).
		Order("exp DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	query = applyKeyword(query, filter.Keyword, "username", "email", "display_name")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.KYCStatus != "" {
		query = query.Where("kyc_status = ?", filter.KYCStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := newestFirst(query).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// BatchUpdateStatus 批量更新用户状态
func (r *GormUserRepository) BatchUpdateStatus(userIDs []uint, status string) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusDisabled {
		updates["token_invalid_before"] = now
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	return r.db.Model(&models.User{}).Where("id IN ?", userIDs).Updates(updates).Error
}
