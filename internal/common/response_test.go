package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorUsesAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, Conflict("INVOICE_NUMBER_TAKEN", "invoice number already exists"))

	require.Equal(t, http.StatusConflict, rr.Code)
	var body map[string]ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "INVOICE_NUMBER_TAKEN", body["error"].Code)
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "connection refused")
}

func TestParsePagination(t *testing.T) {
	req := &http.Request{URL: &url.URL{RawQuery: "limit=500&page=3"}}
	limit, offset := ParsePagination(req, 20, 100)
	require.Equal(t, 100, limit)
	require.Equal(t, 200, offset)

	req = &http.Request{URL: &url.URL{RawQuery: "offset=15"}}
	limit, offset = ParsePagination(req, 20, 100)
	require.Equal(t, 20, limit)
	require.Equal(t, 15, offset)
}

func TestAppErrorMatchesByCode(t *testing.T) {
	base := Conflict("INVOICE_BUSY", "busy")
	withDetails := base.WithDetails(map[string]string{"id": "1"})
	require.ErrorIs(t, withDetails, base)
	require.NotErrorIs(t, withDetails, Conflict("OTHER", "busy"))
}
