package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/services"
)

// HouseholdHandler handles household and membership requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(householdService services.HouseholdServicer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

// CreateHouseholdRequest represents the request payload for creating a household
type CreateHouseholdRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// AddMemberRequest represents the request payload for adding a member.
// A member without a user_id is a placeholder and is approved immediately.
type AddMemberRequest struct {
	DisplayName string  `json:"display_name" binding:"required,max=100"`
	UserID      *string `json:"user_id" binding:"omitempty,uuid"`
}

// CreateHousehold handles the creation of a new household
// @Summary     Create a household
// @Description Create a household with the authenticated user as its first approved member
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household details"
// @Success     201 {object} models.Household "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name, req.DisplayName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"household": household})
}

// GetHousehold returns a household with its members
// @Summary     Get a household
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {object} models.Household "Household"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id} [get]
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	household, err := h.householdService.GetHousehold(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// ListMembers returns every member of a household, pending ones included
// @Summary     List household members
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {array} models.Member "Members"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/members [get]
func (h *HouseholdHandler) ListMembers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.householdService.ListMembers(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMember adds a member to a household
// @Summary     Add a household member
// @Description Members linked to a user start pending and must be approved; placeholders are approved at once
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Household ID"
// @Param       request body AddMemberRequest true "Member details"
// @Success     201 {object} models.Member "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /households/{id}/members [post]
func (h *HouseholdHandler) AddMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.householdService.AddMember(userID, householdID, req.DisplayName, req.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// ApproveMember approves a pending member
// @Summary     Approve a household member
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string true "Household ID"
// @Param       memberId path string true "Member ID"
// @Success     200 {object} models.Member "Member approved"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Member not found"
// @Router      /households/{id}/members/{memberId}/approve [post]
func (h *HouseholdHandler) ApproveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	member, err := h.householdService.ApproveMember(userID, householdID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}
