package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pizza-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestListFranchisesPublic(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "LotaPizza")
	seedStore(db, franchise.ID, "Lehi")
	seedStore(db, franchise.ID, "Springville")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/franchise", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	franchises := resp["franchises"].([]interface{})
	if len(franchises) != 1 {
		t.Fatalf("expected 1 franchise, got %d", len(franchises))
	}

	f := franchises[0].(map[string]interface{})
	if f["name"] != "LotaPizza" {
		t.Errorf("expected name LotaPizza, got %v", f["name"])
	}
	if _, present := f["admins"]; present {
		t.Error("expected admins to be omitted for anonymous callers")
	}

	stores := f["stores"].([]interface{})
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
	if _, present := stores[0].(map[string]interface{})["totalRevenue"]; present {
		t.Error("expected totalRevenue to be omitted for anonymous callers")
	}
}

func TestListFranchisesAdminSeesAdmins(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "PizzaCorp")
	seedStore(db, franchise.ID, "Spanish Fork")
	owner, _ := seedTestUser(db, "owner@jwt.com", models.RoleFranchisee, &franchise.ID)
	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/franchise", nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	f := parseResponse(w)["franchises"].([]interface{})[0].(map[string]interface{})
	admins := f["admins"].([]interface{})
	if len(admins) != 1 {
		t.Fatalf("expected 1 franchise admin, got %d", len(admins))
	}
	if admins[0].(map[string]interface{})["email"] != owner.Email {
		t.Errorf("expected admin email %s, got %v", owner.Email, admins[0])
	}

	stores := f["stores"].([]interface{})
	if _, present := stores[0].(map[string]interface{})["totalRevenue"]; !present {
		t.Error("expected totalRevenue for admin callers")
	}
}

func TestListFranchisesFranchiseeScopedView(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	mine := seedFranchise(db, "MyPizza")
	other := seedFranchise(db, "OtherPizza")
	_, token := seedTestUser(db, "franchisee@jwt.com", models.RoleFranchisee, &mine.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/franchise", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	for _, raw := range parseResponse(w)["franchises"].([]interface{}) {
		f := raw.(map[string]interface{})
		_, hasAdmins := f["admins"]
		switch f["id"] {
		case mine.ID.String():
			if !hasAdmins {
				t.Error("expected admins on the franchisee's own franchise")
			}
		case other.ID.String():
			if hasAdmins {
				t.Error("expected admins omitted on other franchises")
			}
		}
	}
}

func TestAdminsQueryErrorIsReported(t *testing.T) {
	// A database without the user_roles table makes the join fail; the
	// error must reach the caller instead of rendering as an empty list.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Exec(`CREATE TABLE "users" (
		"id" TEXT PRIMARY KEY, "name" TEXT, "email" TEXT NOT NULL UNIQUE,
		"password" TEXT NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`).Error; err != nil {
		t.Fatal(err)
	}

	handler := &FranchiseHandler{DB: db}
	if _, err := handler.admins(uuid.New()); err == nil {
		t.Fatal("expected an error when the role join cannot run")
	}
}

func TestListFranchisesNameFilter(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	seedFranchise(db, "LotaPizza")
	seedFranchise(db, "PizzaCorp")
	seedFranchise(db, "topSpot")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/franchise?name=pizza", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	franchises := resp["franchises"].([]interface{})
	if len(franchises) != 2 {
		t.Errorf("expected 2 matches for 'pizza', got %d", len(franchises))
	}
	if resp["page"] != float64(1) {
		t.Errorf("expected page 1, got %v", resp["page"])
	}
}

func TestCreateFranchiseRequiresAdmin(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	_, dinerToken := seedTestUser(db, "diner@jwt.com", models.RoleDiner, nil)

	body := map[string]string{"name": "NewPizza", "adminEmail": "someone@jwt.com"}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/franchise", body))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without token, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise", body, dinerToken))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for diner, got %d", w.Code)
	}
}

func TestCreateFranchiseGrantsExistingOwner(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	owner, ownerToken := seedTestUser(db, "f@jwt.com", models.RoleDiner, nil)
	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	body := map[string]string{"name": "LotaPizza", "adminEmail": owner.Email}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise", body, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	admins := resp["admins"].([]interface{})
	if len(admins) != 1 || admins[0].(map[string]interface{})["email"] != owner.Email {
		t.Errorf("expected %s as franchise admin, got %v", owner.Email, admins)
	}

	// The owner can now create stores in the new franchise.
	franchiseID := resp["id"].(string)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise/"+franchiseID+"/store",
		map[string]string{"name": "Lehi"}, ownerToken))
	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201 for new franchisee, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateFranchiseUnknownOwnerMakesInvite(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	body := map[string]string{"name": "FuturePizza", "adminEmail": "later@jwt.com"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise", body, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var invites int64
	db.Model(&models.FranchiseInvite{}).Where("email = ?", "later@jwt.com").Count(&invites)
	if invites != 1 {
		t.Errorf("expected 1 pending invite, got %d", invites)
	}
}

func TestCreateFranchiseDuplicateName(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	seedFranchise(db, "LotaPizza")
	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	body := map[string]string{"name": "LotaPizza", "adminEmail": "x@jwt.com"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise", body, adminToken))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteFranchiseCascadesStores(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "ClosingPizza")
	seedStore(db, franchise.ID, "Lehi")
	seedStore(db, franchise.ID, "Provo")
	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/franchise/"+franchise.ID.String(), nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/franchise", nil))
	if franchises := parseResponse(w)["franchises"].([]interface{}); len(franchises) != 0 {
		t.Errorf("expected no franchises after close, got %d", len(franchises))
	}

	var stores int64
	db.Model(&models.Store{}).Where("franchise_id = ?", franchise.ID).Count(&stores)
	if stores != 0 {
		t.Errorf("expected stores to be removed with the franchise, got %d", stores)
	}
}

func TestDeleteFranchiseNotFound(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/franchise/"+uuid.NewString(), nil, adminToken))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateStorePermissions(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "LotaPizza")
	otherFranchise := seedFranchise(db, "PizzaCorp")

	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)
	_, ownerToken := seedTestUser(db, "owner@jwt.com", models.RoleFranchisee, &franchise.ID)
	_, otherOwnerToken := seedTestUser(db, "other@jwt.com", models.RoleFranchisee, &otherFranchise.ID)
	_, dinerToken := seedTestUser(db, "diner@jwt.com", models.RoleDiner, nil)

	url := "/api/franchise/" + franchise.ID.String() + "/store"

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"admin", adminToken, http.StatusCreated},
		{"scoped franchisee", ownerToken, http.StatusCreated},
		{"franchisee of another franchise", otherOwnerToken, http.StatusForbidden},
		{"diner", dinerToken, http.StatusForbidden},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("POST", url, map[string]string{"name": "Store " + tc.name}, tc.token))
		if w.Code != tc.want {
			t.Errorf("%s: expected status %d, got %d: %s", tc.name, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestCreateStoreInitialRevenueZero(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "LotaPizza")
	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise/"+franchise.ID.String()+"/store",
		map[string]string{"name": "Lehi"}, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["name"] != "Lehi" {
		t.Errorf("expected store name Lehi, got %v", resp["name"])
	}
	if resp["total_revenue"] != float64(0) {
		t.Errorf("expected total_revenue 0, got %v", resp["total_revenue"])
	}
}

func TestCreateStoreUnknownFranchise(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	_, adminToken := seedTestUser(db, "admin@jwt.com", models.RoleAdmin, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/franchise/"+uuid.NewString()+"/store",
		map[string]string{"name": "Nowhere"}, adminToken))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListUserFranchises(t *testing.T) {
	db := freshDB()
	router := setupFranchiseRouter(db)

	franchise := seedFranchise(db, "LotaPizza")
	seedStore(db, franchise.ID, "Lehi")
	owner, ownerToken := seedTestUser(db, "owner@jwt.com", models.RoleFranchisee, &franchise.ID)
	_, dinerToken := seedTestUser(db, "diner@jwt.com", models.RoleDiner, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/franchise/"+owner.ID.String(), nil, ownerToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	franchises := parseResponseArray(w)
	if len(franchises) != 1 {
		t.Fatalf("expected 1 franchise, got %d", len(franchises))
	}
	if franchises[0].(map[string]interface{})["name"] != "LotaPizza" {
		t.Errorf("expected LotaPizza, got %v", franchises[0])
	}

	// Another user's dashboard is off limits without the admin role.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/franchise/"+owner.ID.String(), nil, dinerToken))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}
