package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/dto"
	"github.com/parley-chat/parley/internal/mailer"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/validators"
	"github.com/parley-chat/parley/pkg/auth"
)

// UserService регистрация, вход, профиль и статус
type UserService struct {
	db            *database.Database
	mail          mailer.Mailer
	jwt           *auth.JWTManager
	tokenLifetime time.Duration
}

func NewUserService(db *database.Database, mail mailer.Mailer, jwt *auth.JWTManager, tokenLifetime time.Duration) *UserService {
	return &UserService{db: db, mail: mail, jwt: jwt, tokenLifetime: tokenLifetime}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateMeInput struct {
	Username  *string
	AvatarSrc *string
}

func (s *UserService) findRow(ctx context.Context, userUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.Users).
		Find().
		Include(database.UserStatuses, "user_statuses.user_uuid = users.uuid").
		Where("users.uuid = ?", userUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("user")
	}
	return rows[0], nil
}

// Register создаёт пользователя с оффлайн-статусом и шлёт письмо
// подтверждения; ошибка почты регистрацию не откатывает
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*dto.User, error) {
	if err := validators.RequireString(in.Username, "username"); err != nil {
		return nil, err
	}
	if err := validators.RequireString(in.Email, "email"); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, apperrors.NewValidation("password must be at least 8 characters")
	}

	var count int64
	if err := s.db.Gorm().WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewDuplicate("user", "username", in.Username)
	}
	if err := s.db.Gorm().WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewDuplicate("user", "email", in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UUID:         uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	verification := models.UserEmailVerification{
		UUID:      uuid.New(),
		UserUUID:  user.UUID,
		ExpiresAt: time.Now().Add(s.tokenLifetime),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserStatus{
			UserUUID:   user.UUID,
			State:      models.StatusOffline,
			LastSeenAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&verification).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.mail.Send(user.Email, "Verify your email",
		fmt.Sprintf("Your verification token: %s", verification.UUID)); err != nil {
		// Регистрация состоялась, письмо можно запросить повторно
		log.Printf("verification mail to %s failed: %v", user.Email, err)
	}

	row, err := s.findRow(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	return dto.NewUser(row, "user_")
}

// Login проверяет пароль и выдаёт JWT. Любое несовпадение отдаёт
// одинаковый unauthorized, чтобы не раскрывать существование аккаунта
func (s *UserService) Login(ctx context.Context, login, password string) (string, *dto.User, error) {
	if err := validators.RequireString(login, "login"); err != nil {
		return "", nil, err
	}
	if err := validators.RequireString(password, "password"); err != nil {
		return "", nil, err
	}

	var user models.User
	err := s.db.Gorm().WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, apperrors.NewUnauthorized()
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperrors.NewUnauthorized()
	}

	token, err := s.jwt.Generate(user.UUID)
	if err != nil {
		return "", nil, err
	}

	if err := s.touchStatus(ctx, user.UUID, models.StatusOnline, nil); err != nil {
		return "", nil, err
	}

	row, err := s.findRow(ctx, user.UUID)
	if err != nil {
		return "", nil, err
	}
	u, err := dto.NewUser(row, "user_")
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// VerifyEmail подтверждает почту по одноразовому токену.
// Просроченный токен не сжигается
func (s *UserService) VerifyEmail(ctx context.Context, token uuid.UUID) error {
	var v models.UserEmailVerification
	if err := s.db.Gorm().WithContext(ctx).First(&v, "uuid = ?", token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("user_email_verification")
		}
		return err
	}
	if v.ExpiresAt.Before(time.Now()) {
		return apperrors.NewExpired("user_email_verification")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("uuid = ?", v.UserUUID).
			Update("email_verified", true).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserEmailVerification{}, "uuid = ?", v.UUID).Error
	})
}

// RequestPasswordReset шлёт токен сброса; для неизвестной почты
// молча отвечает успехом
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validators.RequireString(email, "email"); err != nil {
		return err
	}

	var user models.User
	err := s.db.Gorm().WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	reset := models.UserPasswordReset{
		UUID:      uuid.New(),
		UserUUID:  user.UUID,
		ExpiresAt: time.Now().Add(s.tokenLifetime),
	}
	if err := s.db.Gorm().WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}
	return s.mail.Send(user.Email, "Password reset",
		fmt.Sprintf("Your password reset token: %s", reset.UUID))
}

// ResetPassword меняет пароль по токену; просроченный токен
// остаётся в базе и её не меняет
func (s *UserService) ResetPassword(ctx context.Context, token uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidation("password must be at least 8 characters")
	}

	var reset models.UserPasswordReset
	if err := s.db.Gorm().WithContext(ctx).First(&reset, "uuid = ?", token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("user_password_reset")
		}
		return err
	}
	if reset.ExpiresAt.Before(time.Now()) {
		return apperrors.NewExpired("user_password_reset")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("uuid = ?", reset.UserUUID).
			Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserPasswordReset{}, "uuid = ?", reset.UUID).Error
	})
}

// Me собственный профиль вместе со статусом
func (s *UserService) Me(ctx context.Context, actor uuid.UUID) (*dto.User, error) {
	row, err := s.findRow(ctx, actor)
	if err != nil {
		return nil, err
	}
	return dto.NewUser(row, "user_")
}

func (s *UserService) UpdateMe(ctx context.Context, actor uuid.UUID, in UpdateMeInput) (*dto.User, error) {
	var user models.User
	if err := s.db.Gorm().WithContext(ctx).First(&user, "uuid = ?", actor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}

	if in.Username != nil {
		if err := validators.RequireString(*in.Username, "username"); err != nil {
			return nil, err
		}
		var count int64
		if err := s.db.Gorm().WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND uuid <> ?", *in.Username, actor).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.NewDuplicate("user", "username", *in.Username)
		}
		user.Username = *in.Username
	}
	if in.AvatarSrc != nil {
		user.AvatarSrc = *in.AvatarSrc
	}
	if err := s.db.Gorm().WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, actor)
	if err != nil {
		return nil, err
	}
	return dto.NewUser(row, "user_")
}

// UpdateStatus переключает состояние; при уходе из online накопленное
// время сессии добавляется к total_online_seconds
func (s *UserService) UpdateStatus(ctx context.Context, actor uuid.UUID, state string, message *string) (*dto.UserStatus, error) {
	if err := validators.UserStatusState(state); err != nil {
		return nil, err
	}
	if err := s.touchStatus(ctx, actor, state, message); err != nil {
		return nil, err
	}

	rows, err := s.db.Builder(database.UserStatuses).
		Find().
		Where("user_statuses.user_uuid = ?", actor).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("user_status")
	}
	return dto.NewUserStatus(rows[0], "user_status_")
}

func (s *UserService) touchStatus(ctx context.Context, userUUID uuid.UUID, state string, message *string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var status models.UserStatus
		if err := tx.First(&status, "user_uuid = ?", userUUID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound("user_status")
			}
			return err
		}

		now := time.Now()
		if status.State == models.StatusOnline {
			status.TotalOnlineSeconds += int64(now.Sub(status.LastSeenAt).Seconds())
		}
		status.State = state
		status.LastSeenAt = now
		if message != nil {
			status.Message = *message
		}
		return tx.Save(&status).Error
	})
}
