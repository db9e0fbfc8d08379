package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/services"
)

const (
	testHouseholdID = "0190a0b0-0000-7000-8000-0000000000b1"
	testMemberID    = "0190a0b0-0000-7000-8000-0000000000c1"
)

// --- mock household service ---

type mockHouseholdService struct {
	createHouseholdFn   func(userID, name, displayName string) (*models.Household, error)
	getHouseholdFn      func(userID, householdID string) (*models.Household, error)
	listMembersFn       func(userID, householdID string) ([]models.Member, error)
	addMemberFn         func(userID, householdID, displayName string, memberUserID *string) (*models.Member, error)
	approveMemberFn     func(userID, householdID, memberID string) (*models.Member, error)
	requireMembershipFn func(userID, householdID string) (*models.Member, error)
}

func (m *mockHouseholdService) CreateHousehold(userID, name, displayName string) (*models.Household, error) {
	if m.createHouseholdFn != nil {
		return m.createHouseholdFn(userID, name, displayName)
	}
	return &models.Household{}, nil
}

func (m *mockHouseholdService) GetHousehold(userID, householdID string) (*models.Household, error) {
	if m.getHouseholdFn != nil {
		return m.getHouseholdFn(userID, householdID)
	}
	return &models.Household{}, nil
}

func (m *mockHouseholdService) ListMembers(userID, householdID string) ([]models.Member, error) {
	if m.listMembersFn != nil {
		return m.listMembersFn(userID, householdID)
	}
	return []models.Member{}, nil
}

func (m *mockHouseholdService) AddMember(userID, householdID, displayName string, memberUserID *string) (*models.Member, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(userID, householdID, displayName, memberUserID)
	}
	return &models.Member{}, nil
}

func (m *mockHouseholdService) ApproveMember(userID, householdID, memberID string) (*models.Member, error) {
	if m.approveMemberFn != nil {
		return m.approveMemberFn(userID, householdID, memberID)
	}
	return &models.Member{}, nil
}

func (m *mockHouseholdService) RequireMembership(userID, householdID string) (*models.Member, error) {
	if m.requireMembershipFn != nil {
		return m.requireMembershipFn(userID, householdID)
	}
	return &models.Member{Status: models.MemberStatusApproved}, nil
}

var _ services.HouseholdServicer = (*mockHouseholdService)(nil)

func setupHouseholdRouter(handler *HouseholdHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/households", handler.CreateHousehold)
	auth.GET("/households/:id", handler.GetHousehold)
	auth.GET("/households/:id/members", handler.ListMembers)
	auth.POST("/households/:id/members", handler.AddMember)
	auth.POST("/households/:id/members/:memberId/approve", handler.ApproveMember)
	return r
}

func TestHouseholdHandler_CreateHousehold(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotUser, gotName, gotDisplay string
		svc := &mockHouseholdService{
			createHouseholdFn: func(userID, name, displayName string) (*models.Household, error) {
				gotUser, gotName, gotDisplay = userID, name, displayName
				return &models.Household{Base: models.Base{ID: testHouseholdID}, Name: name}, nil
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households", `{"name":"Flat 4","display_name":"Ana"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != testUserID || gotName != "Flat 4" || gotDisplay != "Ana" {
			t.Errorf("unexpected arguments: %q %q %q", gotUser, gotName, gotDisplay)
		}
		household := parseJSON(t, rec)["household"].(map[string]interface{})
		if household["id"] != testHouseholdID {
			t.Errorf("expected id %s, got %v", testHouseholdID, household["id"])
		}
	})

	t.Run("returns 400 without a name", func(t *testing.T) {
		r := setupHouseholdRouter(NewHouseholdHandler(&mockHouseholdService{}))

		rec := doRequest(r, "POST", "/households", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestHouseholdHandler_GetHousehold(t *testing.T) {
	t.Run("returns 200 for a member", func(t *testing.T) {
		svc := &mockHouseholdService{
			getHouseholdFn: func(_, householdID string) (*models.Household, error) {
				return &models.Household{
					Base:    models.Base{ID: householdID},
					Name:    "Flat 4",
					Members: []models.Member{{DisplayName: "Ana", Status: models.MemberStatusApproved}},
				}, nil
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "GET", "/households/"+testHouseholdID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		household := parseJSON(t, rec)["household"].(map[string]interface{})
		if members := household["members"].([]interface{}); len(members) != 1 {
			t.Errorf("expected 1 member, got %d", len(members))
		}
	})

	t.Run("returns 403 for a non-member", func(t *testing.T) {
		svc := &mockHouseholdService{
			getHouseholdFn: func(_, _ string) (*models.Household, error) {
				return nil, apperrors.ErrNotAMember
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "GET", "/households/"+testHouseholdID, "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_A_MEMBER")
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupHouseholdRouter(NewHouseholdHandler(&mockHouseholdService{}))

		rec := doRequest(r, "GET", "/households/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHouseholdHandler_ListMembers(t *testing.T) {
	svc := &mockHouseholdService{
		listMembersFn: func(_, _ string) ([]models.Member, error) {
			return []models.Member{
				{DisplayName: "Ana", Status: models.MemberStatusApproved},
				{DisplayName: "Bo", Status: models.MemberStatusPending},
			}, nil
		},
	}
	r := setupHouseholdRouter(NewHouseholdHandler(svc))

	rec := doRequest(r, "GET", "/households/"+testHouseholdID+"/members", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	members := parseJSON(t, rec)["members"].([]interface{})
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[1].(map[string]interface{})["status"] != "pending" {
		t.Errorf("expected second member pending, got %v", members[1])
	}
}

func TestHouseholdHandler_AddMember(t *testing.T) {
	t.Run("placeholder member", func(t *testing.T) {
		var gotUserID *string
		svc := &mockHouseholdService{
			addMemberFn: func(_, householdID, displayName string, memberUserID *string) (*models.Member, error) {
				gotUserID = memberUserID
				return &models.Member{HouseholdID: householdID, DisplayName: displayName, Status: models.MemberStatusApproved}, nil
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members", `{"display_name":"Cy"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUserID != nil {
			t.Errorf("expected nil user id, got %v", *gotUserID)
		}
	})

	t.Run("linked member", func(t *testing.T) {
		var gotUserID *string
		svc := &mockHouseholdService{
			addMemberFn: func(_, _, displayName string, memberUserID *string) (*models.Member, error) {
				gotUserID = memberUserID
				return &models.Member{DisplayName: displayName, UserID: memberUserID, Status: models.MemberStatusPending}, nil
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members",
			`{"display_name":"Bo","user_id":"`+testUserID+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUserID == nil || *gotUserID != testUserID {
			t.Errorf("expected user id %s, got %v", testUserID, gotUserID)
		}
	})

	t.Run("returns 400 on malformed user id", func(t *testing.T) {
		r := setupHouseholdRouter(NewHouseholdHandler(&mockHouseholdService{}))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members", `{"display_name":"Bo","user_id":"nope"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown user", func(t *testing.T) {
		svc := &mockHouseholdService{
			addMemberFn: func(_, _, _ string, _ *string) (*models.Member, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members",
			`{"display_name":"Bo","user_id":"`+testUserID+`"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}

func TestHouseholdHandler_ApproveMember(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotMember string
		svc := &mockHouseholdService{
			approveMemberFn: func(_, _, memberID string) (*models.Member, error) {
				gotMember = memberID
				return &models.Member{Base: models.Base{ID: memberID}, Status: models.MemberStatusApproved}, nil
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members/"+testMemberID+"/approve", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMember != testMemberID {
			t.Errorf("expected member %s, got %s", testMemberID, gotMember)
		}
		member := parseJSON(t, rec)["member"].(map[string]interface{})
		if member["status"] != "approved" {
			t.Errorf("expected approved, got %v", member["status"])
		}
	})

	t.Run("returns 404 on unknown member", func(t *testing.T) {
		svc := &mockHouseholdService{
			approveMemberFn: func(_, _, _ string) (*models.Member, error) {
				return nil, apperrors.ErrMemberNotFound
			},
		}
		r := setupHouseholdRouter(NewHouseholdHandler(svc))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/members/"+testMemberID+"/approve", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "MEMBER_NOT_FOUND")
	})
}
