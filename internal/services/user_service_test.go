package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/mailer"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/pkg/auth"
)

func newUserService(f *fixture) (*services.UserService, *mailer.LogMailer) {
	mail := mailer.NewLogMailer()
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	return services.NewUserService(f.db, mail, jwt, time.Hour), mail
}

func TestUserRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc, mail := newUserService(f)
	ctx := context.Background()

	user, err := svc.Register(ctx, services.RegisterInput{
		Username: "newbie",
		Email:    "newbie@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)
	assert.False(t, user.EmailVerified)

	// Письмо с токеном подтверждения ушло
	require.Len(t, mail.Sent, 1)
	assert.Equal(t, "newbie@example.com", mail.Sent[0].To)

	token, logged, err := svc.Login(ctx, "newbie", "secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.UUID, logged.UUID)
	require.NotNil(t, logged.Status)
	assert.Equal(t, models.StatusOnline, logged.Status.State)

	// Вход по почте тоже работает
	_, _, err = svc.Login(ctx, "newbie@example.com", "secret-password")
	require.NoError(t, err)
}

func TestUserLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		Username: "u1", Email: "u1@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "u1", "wrong")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Несуществующий логин отдаёт ту же ошибку
	_, _, err = svc.Login(ctx, "ghost", "whatever")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestUserRegisterDuplicates(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		Username: "admin", Email: "fresh@example.com", Password: "secret-password",
	})
	assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))

	_, err = svc.Register(ctx, services.RegisterInput{
		Username: "fresh", Email: "admin@example.com", Password: "secret-password",
	})
	assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))

	_, err = svc.Register(ctx, services.RegisterInput{
		Username: "fresh", Email: "fresh@example.com", Password: "short",
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUserVerifyEmail(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	user, err := svc.Register(ctx, services.RegisterInput{
		Username: "v1", Email: "v1@example.com", Password: "secret-password",
	})
	require.NoError(t, err)

	var verification models.UserEmailVerification
	require.NoError(t, f.db.Gorm().First(&verification, "user_uuid = ?", mustUUID(t, user.UUID)).Error)

	require.NoError(t, svc.VerifyEmail(ctx, verification.UUID))

	me, err := svc.Me(ctx, mustUUID(t, user.UUID))
	require.NoError(t, err)
	assert.True(t, me.EmailVerified)

	// Токен одноразовый
	err = svc.VerifyEmail(ctx, verification.UUID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserPasswordReset(t *testing.T) {
	f := newFixture(t)
	svc, mail := newUserService(f)
	ctx := context.Background()

	// Для неизвестной почты молчим
	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, mail.Sent)

	require.NoError(t, svc.RequestPasswordReset(ctx, "admin@example.com"))
	require.Len(t, mail.Sent, 1)

	var reset models.UserPasswordReset
	require.NoError(t, f.db.Gorm().First(&reset, "user_uuid = ?", f.admin).Error)

	require.NoError(t, svc.ResetPassword(ctx, reset.UUID, "brand-new-password"))

	_, _, err := svc.Login(ctx, "admin", "brand-new-password")
	require.NoError(t, err)

	// Токен сожжён
	err = svc.ResetPassword(ctx, reset.UUID, "another-password")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserPasswordResetExpiredTokenNotConsumed(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	reset := models.UserPasswordReset{
		UUID:      uuid.New(),
		UserUUID:  f.admin,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.db.Gorm().Create(&reset).Error)

	err := svc.ResetPassword(ctx, reset.UUID, "brand-new-password")
	assert.Equal(t, apperrors.KindExpired, apperrors.KindOf(err))

	// Просроченный токен остаётся в базе, пароль не изменился
	var still models.UserPasswordReset
	require.NoError(t, f.db.Gorm().First(&still, "uuid = ?", reset.UUID).Error)

	var user models.User
	require.NoError(t, f.db.Gorm().First(&user, "uuid = ?", f.admin).Error)
	assert.Equal(t, "x", user.PasswordHash)
}

func TestUserUpdateStatusAccumulatesOnlineTime(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	// Притворяемся, что пользователь онлайн уже два часа
	require.NoError(t, f.db.Gorm().Model(&models.UserStatus{}).
		Where("user_uuid = ?", f.member).
		Updates(map[string]any{
			"state":        models.StatusOnline,
			"last_seen_at": time.Now().Add(-2 * time.Hour),
		}).Error)

	status, err := svc.UpdateStatus(ctx, f.member, models.StatusAway, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAway, status.State)
	assert.InDelta(t, 2.0, status.TotalOnlineHours, 0.01)

	// Уход из offline время не добавляет
	status, err = svc.UpdateStatus(ctx, f.member, models.StatusOnline, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, status.TotalOnlineHours, 0.01)
}

func TestUserUpdateMe(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	user, err := svc.UpdateMe(ctx, f.member, services.UpdateMeInput{Username: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)

	_, err = svc.UpdateMe(ctx, f.member, services.UpdateMeInput{Username: strPtr("admin")})
	assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
}
