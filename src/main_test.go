package main

import (
	"bytes"
	"encoding/json"
	"ims/src/db"
	"ims/src/types"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
}

func (s *TestSuite) SetupTest() {
	d, mock := db.GetMockDB()
	s.DB = d
	s.Mock = mock
}

func newTestRouter() *gin.Engine {
	router := setupRouter()
	bookingRoutes(router)
	uploadRoutes(router)
	api := apiGroup(router)
	inventoryHandlers(api)
	memberHandlers(api)
	bookingHandlers(api)
	return router
}

func memberRows(id uint, count int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "surname", "booking_count", "date_joined"}).
		AddRow(id, "Sophie", "Davis", count, time.Now())
}

func inventoryRows(id uint, remaining int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "remaining_count", "expiration_date"}).
		AddRow(id, "Bali", "Suspendisse congue erat ac ex venenatis mattis", remaining, time.Now().AddDate(0, 6, 0))
}

func jsonRequest(method string, target string, body any) *http.Request {
	sbody, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, target, strings.NewReader(string(sbody)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func csvUploadRequest(target string, filename string, content string) *http.Request {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write([]byte(content))
	mw.Close()
	req, _ := http.NewRequest("POST", target, buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *TestSuite) TestHomeRoute() {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "/book/", gjson.GetBytes(rbytes, "endpoints.book").String())
}

func (s *TestSuite) TestBookRoute() {
	router := newTestRouter()

	s.Run("Should create a booking and return its reference", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "members_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(memberRows(1, 0))
		s.Mock.ExpectQuery(`SELECT \* FROM "inventory_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(inventoryRows(2, 5))
		s.Mock.ExpectQuery(`INSERT INTO "booking_table"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		s.Mock.ExpectExec(`UPDATE "members_table" SET "booking_count"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Mock.ExpectExec(`UPDATE "inventory_table" SET "remaining_count"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/book/", types.CreateBookingRequestBody{MemberID: 1, InventoryID: 2})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		reference := gjson.GetBytes(rbytes, "booking_reference").String()
		_, err = uuid.Parse(reference)
		assert.Nil(s.T(), err)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject a member at the booking limit", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "members_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(memberRows(1, 2))
		s.Mock.ExpectQuery(`SELECT \* FROM "inventory_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(inventoryRows(2, 5))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/book/", types.CreateBookingRequestBody{MemberID: 1, InventoryID: 2})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), string(types.ErrBookingLimit), gjson.GetBytes(rbytes, "error").String())
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject an item with no stock left", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "members_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(memberRows(1, 0))
		s.Mock.ExpectQuery(`SELECT \* FROM "inventory_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(inventoryRows(2, 0))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/book/", types.CreateBookingRequestBody{MemberID: 1, InventoryID: 2})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), string(types.ErrOutOfStock), gjson.GetBytes(rbytes, "error").String())
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should return 404 for an unknown member", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "members_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "surname", "booking_count", "date_joined"}))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/book/", types.CreateBookingRequestBody{MemberID: 99, InventoryID: 2})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should return 400 for a missing member_id", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/book/", map[string]any{"inventory_id": 2})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestCancelRoute() {
	router := newTestRouter()

	s.Run("Should return 404 for an unknown reference", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "booking_table" WHERE .+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "inventory_id", "booking_date", "reference"}))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/cancel/", types.CancelBookingRequestBody{Reference: uuid.New().String()})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should return 400 for a malformed reference", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/cancel/", types.CancelBookingRequestBody{Reference: "not-a-reference"})
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestUploadRoutes() {
	router := newTestRouter()

	s.Run("Should reject a CSV missing a required column", func() {
		w := httptest.NewRecorder()
		req := csvUploadRequest("/upload-inventory/", "inventory.csv", "title,description,remaining_count\nBali,desc,5\n")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject a non-CSV file", func() {
		w := httptest.NewRecorder()
		req := csvUploadRequest("/upload-inventory/", "inventory.xlsx", "whatever")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should insert surviving rows and report the dropped count", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "inventory_table"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
		s.Mock.ExpectCommit()

		content := "title,description,remaining_count,expiration_date\n" +
			"Bali,desc,5,2030-11-19\n" +
			"Madeira,desc,4,2030-10-15\n" +
			"Pag,desc,3,not-a-date\n"
		w := httptest.NewRecorder()
		req := csvUploadRequest("/upload-inventory/", "inventory.csv", content)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), int64(2), gjson.GetBytes(rbytes, "rows_inserted").Int())
		assert.Equal(s.T(), int64(1), gjson.GetBytes(rbytes, "rows_skipped").Int())
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should insert member rows from CSV", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "members_table"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		s.Mock.ExpectCommit()

		content := "name,surname,booking_count,date_joined\nSophie,Davis,0,2024-01-02 12:10:11\n"
		w := httptest.NewRecorder()
		req := csvUploadRequest("/upload-members/", "members.csv", content)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestInventoryRoutes() {
	router := newTestRouter()

	s.Run("Should return the inventory list", func() {
		s.Mock.ExpectQuery(`SELECT \* FROM "inventory_table"`).
			WillReturnRows(inventoryRows(1, 5))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/inventory", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), int64(1), gjson.GetBytes(rbytes, "count").Int())
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should return 404 for an unknown item", func() {
		s.Mock.ExpectQuery(`SELECT \* FROM "inventory_table" WHERE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "remaining_count", "expiration_date"}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/inventory/99", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should create an inventory item", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "inventory_table"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		s.Mock.ExpectCommit()

		body := types.CreateInventoryRequestBody{
			Title:          "Bali",
			Description:    "Suspendisse congue erat ac ex venenatis mattis",
			RemainingCount: 5,
			ExpirationDate: "2030-11-19",
		}
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/inventory", body)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject a bad expiration date", func() {
		body := types.CreateInventoryRequestBody{
			Title:          "Bali",
			RemainingCount: 5,
			ExpirationDate: "19/11/2030",
		}
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/inventory", body)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestMemberRoutes() {
	router := newTestRouter()

	s.Run("Should create a member with a zero booking count", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "members_table"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		s.Mock.ExpectCommit()

		body := types.CreateMemberRequestBody{Name: "Sophie", Surname: "Davis"}
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/members", body)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), int64(0), gjson.GetBytes(rbytes, "data.booking_count").Int())
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should return member list", func() {
		s.Mock.ExpectQuery(`SELECT \* FROM "members_table"`).
			WillReturnRows(memberRows(1, 0))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/members", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestBookingListRoute() {
	router := newTestRouter()

	s.Mock.ExpectQuery(`SELECT \* FROM "booking_table"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "inventory_id", "booking_date", "reference"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), int64(0), gjson.GetBytes(rbytes, "count").Int())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
