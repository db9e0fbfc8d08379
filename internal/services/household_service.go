package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// householdService handles households and their membership.
type householdService struct {
	db *gorm.DB
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB) HouseholdServicer {
	return &householdService{db: db}
}

// CreateHousehold creates a household and makes the creator its first approved member.
func (s *householdService) CreateHousehold(userID, name, displayName string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "household name is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		var user models.User
		if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		displayName = user.DisplayName()
	}

	household := &models.Household{
		Name:            name,
		CreatedByUserID: userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(household).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		member := models.Member{
			HouseholdID: household.ID,
			UserID:      &userID,
			DisplayName: displayName,
			Status:      models.MemberStatusApproved,
		}
		if err := tx.Create(&member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		household.Members = []models.Member{member}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return household, nil
}

// GetHousehold returns a household with its members if the user belongs to it.
func (s *householdService) GetHousehold(userID, householdID string) (*models.Household, error) {
	if _, err := s.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}

	var household models.Household
	if err := s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", householdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// ListMembers returns every member of the household, pending ones included.
func (s *householdService) ListMembers(userID, householdID string) ([]models.Member, error) {
	if _, err := s.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}

	var members []models.Member
	if err := s.db.Where("household_id = ?", householdID).Order("created_at ASC").Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// AddMember adds someone to the household. Members linked to a user account
// stay pending until another member approves them; placeholder members are
// approved immediately.
func (s *householdService) AddMember(userID, householdID, displayName string, memberUserID *string) (*models.Member, error) {
	if _, err := s.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "display name is required")
	}

	status := models.MemberStatusApproved
	if memberUserID != nil && *memberUserID != "" {
		var count int64
		if err := s.db.Model(&models.User{}).Where("id = ?", *memberUserID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrUserNotFound
		}
		if err := s.db.Model(&models.Member{}).
			Where("household_id = ? AND user_id = ?", householdID, *memberUserID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user is already a member of this household")
		}
		status = models.MemberStatusPending
	} else {
		memberUserID = nil
	}

	member := &models.Member{
		HouseholdID: householdID,
		UserID:      memberUserID,
		DisplayName: displayName,
		Status:      status,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// ApproveMember marks a pending member as approved. Approving an approved
// member is a no-op.
func (s *householdService) ApproveMember(userID, householdID, memberID string) (*models.Member, error) {
	if _, err := s.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}

	var member models.Member
	if err := s.db.Where("id = ? AND household_id = ?", memberID, householdID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if member.IsApproved() {
		return &member, nil
	}

	if err := s.db.Model(&member).Update("status", models.MemberStatusApproved).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	member.Status = models.MemberStatusApproved
	return &member, nil
}

// RequireMembership returns the caller's approved member record in the household.
func (s *householdService) RequireMembership(userID, householdID string) (*models.Member, error) {
	var count int64
	if err := s.db.Model(&models.Household{}).Where("id = ?", householdID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrHouseholdNotFound
	}

	var member models.Member
	if err := s.db.Where("household_id = ? AND user_id = ? AND status = ?", householdID, userID, models.MemberStatusApproved).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotAMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}
