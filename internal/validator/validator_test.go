package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func jsonContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBind_DecimalAmount(t *testing.T) {
	var ok model.RecordPaymentRequest
	assert.Nil(t, Bind(jsonContext(`{"jumlah":"150000","metode_pembayaran":"tunai"}`), &ok))
	assert.Equal(t, "150000", ok.Amount.String())

	var negative model.RecordPaymentRequest
	fields := Bind(jsonContext(`{"jumlah":-5,"metode_pembayaran":"tunai"}`), &negative)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "jumlah")
}

func TestBind_ReportsWireNames(t *testing.T) {
	var req model.CreateKasRequest
	fields := Bind(jsonContext(`{"deskripsi":"ab","jumlah":1000,"tipe":"pinjam"}`), &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "deskripsi")
	assert.Contains(t, fields, "tipe")
	assert.NotContains(t, fields, "jumlah")
}

func TestBindQuery(t *testing.T) {
	type query struct {
		Status string `form:"status" binding:"omitempty,oneof=all paid"`
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?status=lunas", nil)

	var q query
	fields := BindQuery(c, &q)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "status")
}

func TestTranslateErrors_NonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}
