/*
 * @Description: 用户服务
 * @Author: inkwell
 * @Date: 2026-03-04 16:03:57
 * @LastEditTime: 2026-10-14 10:24:18
 * @LastEditors: inkwell
 */
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/inkwell-cms/inkwell/internal/pkg/security"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/policy"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

const (
	MaxEmailLength    = 255
	MinPasswordLength = 6
	MaxPasswordLength = 255
	MinNicknameLength = 3
	MaxNicknameLength = 50
)

// ProfileUpdate 是资料修改的输入，nil 字段保持不变
type ProfileUpdate struct {
	Email    *string
	Nickname *string
	Password *string
}

// UserService 定义了账户相关的业务逻辑接口
type UserService interface {
	Register(ctx context.Context, email, password, nickname string) (*model.UserAccount, error)
	Authenticate(ctx context.Context, email, password string) (*model.UserAccount, error)
	GetByID(ctx context.Context, id uint) (*model.UserAccount, error)
	ViewProfile(ctx context.Context, actor model.Actor, userID uint) (*model.UserAccount, bool, error)
	UpdateProfile(ctx context.Context, actor model.Actor, userID uint, fields ProfileUpdate) (*model.UserAccount, error)
	CloseAccount(ctx context.Context, actor model.Actor, userID uint, cascadeDeleteContent bool) error

	// 审核员和管理员
	Report(ctx context.Context, actor model.Actor, userID uint, description string) (*model.ModerationRecord, error)
	List(ctx context.Context, actor model.Actor, filter repository.UserFilter) ([]*model.UserAccount, error)

	// 仅管理员
	ChangeRole(ctx context.Context, actor model.Actor, userID uint, role string) (*model.UserAccount, error)
	Ban(ctx context.Context, actor model.Actor, userID uint, description string) (*model.ModerationRecord, error)
	Unban(ctx context.Context, actor model.Actor, userID uint) error
	ValidateAccount(ctx context.Context, actor model.Actor, userID uint) error
	RefuseAccount(ctx context.Context, actor model.Actor, userID uint) error
	ListPendingAccounts(ctx context.Context, actor model.Actor) ([]*model.UserAccount, error)

	// CreateAdministrator 供命令行初始化使用，不经过鉴权
	CreateAdministrator(ctx context.Context, email, password, nickname string) (*model.UserAccount, error)
}

// userService 是 UserService 接口的实现
type userService struct {
	userRepo  repository.UserRepository
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewUserService 是 userService 的构造函数
func NewUserService(userRepo repository.UserRepository, txManager repository.TransactionManager, logger *slog.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger.With("service", "user"),
	}
}

// validate 与 gin binding 使用同一套规则，命令行创建账户时同样生效
var validate = validator.New()

// emailRule 是邮箱字段的校验规则，不接受带显示名的地址
var emailRule = fmt.Sprintf("required,email,max=%d", MaxEmailLength)

// normalizeEmail 去除首尾空白并转为小写后校验格式
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, emailRule); err != nil {
		return "", constant.NewValidationError("邮箱格式不正确")
	}
	return email, nil
}

func validatePassword(password string) error {
	if n := len(password); n < MinPasswordLength || n > MaxPasswordLength {
		return constant.NewValidationError("密码长度必须在 %d 到 %d 个字符之间", MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

func normalizeNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n < MinNicknameLength || n > MaxNicknameLength {
		return "", constant.NewValidationError("昵称长度必须在 %d 到 %d 个字符之间", MinNicknameLength, MaxNicknameLength)
	}
	return nickname, nil
}

// checkUnique 检查邮箱和昵称是否被 excludeID 以外的账户占用。
// 这里只为常见情况给出友好提示，真正的保证来自数据库唯一索引。
func (s *userService) checkUnique(ctx context.Context, email, nickname string, excludeID uint) error {
	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return fmt.Errorf("检查邮箱是否存在失败: %w", err)
		}
		if exists {
			return constant.NewValidationError("该邮箱已被注册")
		}
	}
	if nickname != "" {
		exists, err := s.userRepo.ExistsByNickname(ctx, nickname, excludeID)
		if err != nil {
			return fmt.Errorf("检查昵称是否存在失败: %w", err)
		}
		if exists {
			return constant.NewValidationError("该昵称已被使用")
		}
	}
	return nil
}

func (s *userService) create(ctx context.Context, email, password, nickname string, role model.UserRole, state model.AccountState) (*model.UserAccount, error) {
	// 1. 校验字段
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	nickname, err = normalizeNickname(nickname)
	if err != nil {
		return nil, err
	}

	// 2. 唯一性检查
	if err := s.checkUnique(ctx, email, nickname, 0); err != nil {
		return nil, err
	}

	// 3. 哈希密码并保存
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}
	u := model.NewUserAccount(email, hash, nickname)
	u.Role = role
	u.State = state
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return u, nil
}

// Register 注册新账户，新账户为普通作者、待审核、未封禁
func (s *userService) Register(ctx context.Context, email, password, nickname string) (*model.UserAccount, error) {
	u, err := s.create(ctx, email, password, nickname, model.RoleWriter, model.AccountStatePending)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "新用户注册", "user_id", u.ID)
	return u, nil
}

// CreateAdministrator 直接创建一个已审核通过的管理员账户
func (s *userService) CreateAdministrator(ctx context.Context, email, password, nickname string) (*model.UserAccount, error) {
	u, err := s.create(ctx, email, password, nickname, model.RoleAdministrator, model.AccountStateValidated)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "管理员账户已创建", "user_id", u.ID)
	return u, nil
}

// Authenticate 校验邮箱和密码。邮箱不存在和密码错误都返回 (nil, nil)；
// 只有密码正确之后才会报告账户已封禁。
func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if u == nil {
		security.CompareDummy(password)
		return nil, nil
	}
	if !security.CheckPasswordHash(password, u.PasswordHash) {
		return nil, nil
	}
	if u.IsBanned {
		return nil, constant.ErrAccountBanned
	}
	return u, nil
}

// GetByID 获取账户，不存在时返回 (nil, nil)
func (s *userService) GetByID(ctx context.Context, id uint) (*model.UserAccount, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息时数据库出错: %w", err)
	}
	return u, nil
}

// ViewProfile 返回账户以及调用者能否看到完整资料，账户不存在时返回 (nil, false, nil)
func (s *userService) ViewProfile(ctx context.Context, actor model.Actor, userID uint) (*model.UserAccount, bool, error) {
	target, err := s.GetByID(ctx, userID)
	if err != nil || target == nil {
		return nil, false, err
	}
	viewer, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, false, err
	}
	return target, policy.FullProfileVisible(target, viewer), nil
}

// loadTarget 加载被操作的账户，不存在时返回 NotFound
func (s *userService) loadTarget(ctx context.Context, repo repository.UserRepository, id uint) (*model.UserAccount, error) {
	u, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息时数据库出错: %w", err)
	}
	if u == nil {
		return nil, constant.NewNotFoundError("用户不存在")
	}
	return u, nil
}

// authorize 加载调用者并检查权限
func (s *userService) authorize(ctx context.Context, actor model.Actor, action policy.Action, isOwner bool) (*model.UserAccount, error) {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(action, u, isOwner); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile 局部更新邮箱、昵称和密码。本人或管理员可以修改，唯一性检查排除账户自身。
func (s *userService) UpdateProfile(ctx context.Context, actor model.Actor, userID uint, fields ProfileUpdate) (*model.UserAccount, error) {
	if _, err := s.authorize(ctx, actor, policy.UserUpdateProfile, actor.UserID() == userID); err != nil {
		return nil, err
	}
	u, err := s.loadTarget(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	var email, nickname string
	if fields.Email != nil {
		if email, err = normalizeEmail(*fields.Email); err != nil {
			return nil, err
		}
	}
	if fields.Nickname != nil {
		if nickname, err = normalizeNickname(*fields.Nickname); err != nil {
			return nil, err
		}
	}
	if fields.Password != nil {
		if err := validatePassword(*fields.Password); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, email, nickname, u.ID); err != nil {
		return nil, err
	}

	if email != "" {
		u.Email = email
	}
	if nickname != "" {
		u.Nickname = nickname
	}
	if fields.Password != nil {
		hash, err := security.HashPassword(*fields.Password)
		if err != nil {
			return nil, fmt.Errorf("密码加密失败: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("更新用户资料失败: %w", err)
	}
	s.logger.InfoContext(ctx, "用户资料已更新", "user_id", u.ID, "actor_id", actor.UserID())
	return u, nil
}

// CloseAccount 关闭账户：可选地先把账户的全部文章和评论软删除，再封禁账户。
// 整个过程在一个事务中完成。
func (s *userService) CloseAccount(ctx context.Context, actor model.Actor, userID uint, cascadeDeleteContent bool) error {
	if _, err := s.authorize(ctx, actor, policy.UserClose, actor.UserID() == userID); err != nil {
		return err
	}

	var articles, comments int64
	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if _, err := s.loadTarget(ctx, repos.User, userID); err != nil {
			return err
		}
		if cascadeDeleteContent {
			var err error
			if articles, err = repos.Article.UpdateStateByOwner(ctx, userID, model.ContentStateErased); err != nil {
				return fmt.Errorf("删除用户文章失败: %w", err)
			}
			if comments, err = repos.Comment.UpdateStateByOwner(ctx, userID, model.ContentStateErased); err != nil {
				return fmt.Errorf("删除用户评论失败: %w", err)
			}
		}
		if err := repos.User.SetBanned(ctx, userID, true); err != nil {
			return fmt.Errorf("封禁账户失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "账户已关闭",
		"user_id", userID,
		"actor_id", actor.UserID(),
		"erased_articles", articles,
		"erased_comments", comments,
	)
	return nil
}

// ChangeRole 修改账户角色，管理员不能修改自己的角色
func (s *userService) ChangeRole(ctx context.Context, actor model.Actor, userID uint, role string) (*model.UserAccount, error) {
	admin, err := s.authorize(ctx, actor, policy.UserChangeRole, false)
	if err != nil {
		return nil, err
	}
	newRole, err := model.ParseUserRole(role)
	if err != nil {
		return nil, constant.NewValidationError("未知的角色: %s", role)
	}
	if admin.ID == userID {
		return nil, constant.NewValidationError("不能修改自己的角色")
	}
	u, err := s.loadTarget(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRole(ctx, userID, newRole); err != nil {
		return nil, fmt.Errorf("修改角色失败: %w", err)
	}
	u.Role = newRole

	s.logger.InfoContext(ctx, "用户角色已修改", "user_id", userID, "admin_id", admin.ID, "role", newRole)
	return u, nil
}

// Ban 封禁账户并写入 AccountBan 审核记录
func (s *userService) Ban(ctx context.Context, actor model.Actor, userID uint, description string) (*model.ModerationRecord, error) {
	admin, err := s.authorize(ctx, actor, policy.UserBan, false)
	if err != nil {
		return nil, err
	}
	if admin.ID == userID {
		return nil, constant.NewValidationError("不能封禁自己的账户")
	}
	record, err := model.NewModerationRecord(model.ActionTypeAccountBan, description, admin.ID, model.TargetingUser(userID))
	if err != nil {
		return nil, constant.NewValidationError("封禁账户时必须填写理由")
	}

	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if _, err := s.loadTarget(ctx, repos.User, userID); err != nil {
			return err
		}
		if err := repos.User.SetBanned(ctx, userID, true); err != nil {
			return fmt.Errorf("封禁账户失败: %w", err)
		}
		if err := repos.Moderation.Create(ctx, record); err != nil {
			return fmt.Errorf("写入审核记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "账户已封禁", "user_id", userID, "admin_id", admin.ID)
	return record, nil
}

// Unban 解除封禁，不写审核记录
func (s *userService) Unban(ctx context.Context, actor model.Actor, userID uint) error {
	admin, err := s.authorize(ctx, actor, policy.UserBan, false)
	if err != nil {
		return err
	}
	if _, err := s.loadTarget(ctx, s.userRepo, userID); err != nil {
		return err
	}
	if err := s.userRepo.SetBanned(ctx, userID, false); err != nil {
		return fmt.Errorf("解除封禁失败: %w", err)
	}
	s.logger.InfoContext(ctx, "账户已解封", "user_id", userID, "admin_id", admin.ID)
	return nil
}

// Report 举报用户，写入 UserReport 审核记录，不改变账户状态
func (s *userService) Report(ctx context.Context, actor model.Actor, userID uint, description string) (*model.ModerationRecord, error) {
	reporter, err := s.authorize(ctx, actor, policy.UserReport, false)
	if err != nil {
		return nil, err
	}
	record, err := model.NewModerationRecord(model.ActionTypeUserReport, description, reporter.ID, model.TargetingUser(userID))
	if err != nil {
		return nil, constant.NewValidationError("举报用户时必须填写理由")
	}
	if _, err := s.loadTarget(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		return repos.Moderation.Create(ctx, record)
	})
	if err != nil {
		return nil, fmt.Errorf("写入审核记录失败: %w", err)
	}

	s.logger.InfoContext(ctx, "用户被举报", "user_id", userID, "reporter_id", reporter.ID)
	return record, nil
}

// ValidateAccount 通过注册审核，同时解除封禁
func (s *userService) ValidateAccount(ctx context.Context, actor model.Actor, userID uint) error {
	admin, err := s.authorize(ctx, actor, policy.UserReview, false)
	if err != nil {
		return err
	}
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if _, err := s.loadTarget(ctx, repos.User, userID); err != nil {
			return err
		}
		if err := repos.User.UpdateState(ctx, userID, model.AccountStateValidated); err != nil {
			return fmt.Errorf("更新账户状态失败: %w", err)
		}
		return repos.User.SetBanned(ctx, userID, false)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "账户已通过审核", "user_id", userID, "admin_id", admin.ID)
	return nil
}

// RefuseAccount 拒绝注册申请
func (s *userService) RefuseAccount(ctx context.Context, actor model.Actor, userID uint) error {
	admin, err := s.authorize(ctx, actor, policy.UserReview, false)
	if err != nil {
		return err
	}
	if _, err := s.loadTarget(ctx, s.userRepo, userID); err != nil {
		return err
	}
	if err := s.userRepo.UpdateState(ctx, userID, model.AccountStateRefused); err != nil {
		return fmt.Errorf("更新账户状态失败: %w", err)
	}
	s.logger.InfoContext(ctx, "账户注册被拒绝", "user_id", userID, "admin_id", admin.ID)
	return nil
}

// ListPendingAccounts 列出等待审核的账户，按注册时间升序
func (s *userService) ListPendingAccounts(ctx context.Context, actor model.Actor) ([]*model.UserAccount, error) {
	if _, err := s.authorize(ctx, actor, policy.UserReview, false); err != nil {
		return nil, err
	}
	pending := model.AccountStatePending
	users, err := s.userRepo.FindAll(ctx, repository.UserFilter{State: &pending})
	if err != nil {
		return nil, fmt.Errorf("查询待审核账户失败: %w", err)
	}
	return users, nil
}

// List 按条件列出账户
func (s *userService) List(ctx context.Context, actor model.Actor, filter repository.UserFilter) ([]*model.UserAccount, error) {
	if _, err := s.authorize(ctx, actor, policy.UserList, false); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return users, nil
}
