package mapper

import (
	"time"

	"agora-backend/internal/common/validation"
	authmodels "agora-backend/internal/features/auth/models"
	"agora-backend/internal/features/user/models"
)

// ToApplicationIdentity maps registry row to the identity embedded into tokens
func ToApplicationIdentity(user *models.User) *authmodels.ApplicationIdentity {
	return &authmodels.ApplicationIdentity{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Username:     user.Username,
		LanguageCode: user.LanguageCode,
		Role:         user.Role,
		Status:       user.Status,
	}
}

// FromVerified builds a new registry row from a verified Telegram identity
func FromVerified(identity *authmodels.VerifiedIdentity, now time.Time) *models.User {
	return &models.User{
		ID:           identity.TelegramID,
		Username:     identity.Username,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		LanguageCode: identity.LanguageCode,
		Role:         validation.RoleUser,
		Status:       validation.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProfileChanged reports whether Telegram profile fields differ from the stored row
func ProfileChanged(user *models.User, identity *authmodels.VerifiedIdentity) bool {
	return user.Username != identity.Username ||
		user.FirstName != identity.FirstName ||
		user.LastName != identity.LastName ||
		user.LanguageCode != identity.LanguageCode
}
