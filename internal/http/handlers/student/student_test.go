package student_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/students-docstore/internal/http/handlers/student"
	"github.com/aanand-mishra/students-docstore/internal/storage/storagetest"
	"github.com/aanand-mishra/students-docstore/internal/types"
	"github.com/aanand-mishra/students-docstore/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(store *storagetest.Memory) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /students", student.GetList(store))
	mux.HandleFunc("POST /students", student.New(store))
	mux.HandleFunc("GET /students/{id}", student.GetByID(store))
	mux.HandleFunc("PUT /students/{id}", student.Update(store))
	mux.HandleFunc("DELETE /students/{id}", student.Delete(store))
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []types.Student {
	t.Helper()
	var students []types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	return students
}

func createID(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/students", body)
	require.Equal(t, http.StatusOK, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/students/"), loc)
	return strings.TrimPrefix(loc, "/students/")
}

func TestScenario(t *testing.T) {
	h := newMux(storagetest.NewMemory())

	rec := do(t, h, http.MethodPost, "/students", `{"name":"Ana","age":20,"subject":"Math"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, student.MsgAdded, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ID)
	assert.Equal(t, "Ana", list[0].Name)
	assert.EqualValues(t, 20, list[0].Age)
	assert.Equal(t, "Math", list[0].Subject)

	id := list[0].ID.Hex()

	rec = do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, list[0], got)

	rec = do(t, h, http.MethodPut, "/students/"+id, `{"name":"Ana","age":21,"subject":"Math"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, student.MsgUpdated, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 21, got.Age)
	assert.Equal(t, id, got.IDHex())

	rec = do(t, h, http.MethodDelete, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, student.MsgDeleted, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/students/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestListEmptyIsArray(t *testing.T) {
	h := newMux(storagetest.NewMemory())

	rec := do(t, h, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetIsRepeatable(t *testing.T) {
	h := newMux(storagetest.NewMemory())
	id := createID(t, h, `{"name":"Bo","age":0,"subject":"Art"}`)

	first := do(t, h, http.MethodGet, "/students/"+id, "")
	second := do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.JSONEq(t, `{"_id":"`+id+`","name":"Bo","age":0,"subject":"Art"}`, first.Body.String())
}

func TestMalformedIdentifiers(t *testing.T) {
	h := newMux(storagetest.NewMemory())

	for _, id := range []string{"abc", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "65a1b2c3d4e5f60718293a4"} {
		t.Run(id, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/students/"+id, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)

			rec = do(t, h, http.MethodPut, "/students/"+id, `{"name":"A","age":1,"subject":"B"}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			rec = do(t, h, http.MethodDelete, "/students/"+id, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, response.StatusError, body.Status)
			assert.Contains(t, body.Error, "invalid identifier")
		})
	}
}

func TestUnknownIdentifierIsNoOp(t *testing.T) {
	store := storagetest.NewMemory()
	h := newMux(store)
	id := createID(t, h, `{"name":"Ana","age":20,"subject":"Math"}`)

	const missing = "000000000000000000000001"

	rec := do(t, h, http.MethodGet, "/students/"+missing, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/students/"+missing, `{"name":"X","age":1,"subject":"Y"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/students/"+missing, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/students", "")
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].IDHex())
	assert.Equal(t, "Ana", list[0].Name)
}

func TestUpdateKeepsIdentifier(t *testing.T) {
	h := newMux(storagetest.NewMemory())
	id := createID(t, h, `{"name":"Ana","age":20,"subject":"Math"}`)

	body := `{"_id":"000000000000000000000001","name":"Ana","age":30,"subject":"Math"}`
	rec := do(t, h, http.MethodPut, "/students/"+id, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.IDHex())
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "Math", got.Subject)
	assert.EqualValues(t, 30, got.Age)
}

func TestCreateIgnoresClientIdentifier(t *testing.T) {
	h := newMux(storagetest.NewMemory())

	id := createID(t, h, `{"_id":"000000000000000000000001","name":"Ana","age":20,"subject":"Math"}`)
	assert.NotEqual(t, "000000000000000000000001", id)
}

func TestBadBodies(t *testing.T) {
	store := storagetest.NewMemory()
	h := newMux(store)
	id := createID(t, h, `{"name":"Ana","age":20,"subject":"Math"}`)

	cases := map[string]struct {
		body    string
		message string
	}{
		"empty":           {"", "request body is empty"},
		"malformed":       {`{"name":`, ""},
		"negative age":    {`{"name":"A","age":-1,"subject":"B"}`, ""},
		"age too large":   {`{"name":"A","age":256,"subject":"B"}`, ""},
		"age as string":   {`{"name":"A","age":"20","subject":"B"}`, ""},
		"missing name":    {`{"age":1,"subject":"B"}`, "field Name is required"},
		"missing age":     {`{"name":"A","subject":"B"}`, "field Age is required"},
		"missing subject": {`{"name":"A","age":1}`, "field Subject is required"},
		"null name":       {`{"name":null,"age":1,"subject":"B"}`, "field Name is required"},
		"missing all":     {`{}`, "field Name is required, field Age is required, field Subject is required"},
		"trailing data":   {`{"name":"A","age":21,"subject":"B"} trailing`, "request body must contain a single JSON object"},
		"two objects":     {`{"name":"A","age":21,"subject":"B"}{"name":"C","age":22,"subject":"D"}`, "request body must contain a single JSON object"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for _, target := range []struct{ method, path string }{
				{http.MethodPost, "/students"},
				{http.MethodPut, "/students/" + id},
			} {
				rec := do(t, h, target.method, target.path, tc.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code, target.method)

				var body response.Response
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, response.StatusError, body.Status)
				if tc.message != "" {
					assert.Equal(t, tc.message, body.Error)
				}
			}
		})
	}

	list, err := store.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 20, list[0].Age)
}

func TestEmptyStringsAreAccepted(t *testing.T) {
	h := newMux(storagetest.NewMemory())
	id := createID(t, h, `{"name":"","age":20,"subject":""}`)

	rec := do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"`+id+`","name":"","age":20,"subject":""}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/students/"+id, `{"name":"Ana","age":0,"subject":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/students/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"`+id+`","name":"Ana","age":0,"subject":""}`, rec.Body.String())
}

func TestStorageFailures(t *testing.T) {
	store := storagetest.NewMemory()
	h := newMux(store)
	id := createID(t, h, `{"name":"Ana","age":20,"subject":"Math"}`)

	store.Err = errors.New("connection refused")

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/students", ""},
		{http.MethodPost, "/students", `{"name":"A","age":1,"subject":"B"}`},
		{http.MethodGet, "/students/" + id, ""},
		{http.MethodPut, "/students/" + id, `{"name":"A","age":1,"subject":"B"}`},
		{http.MethodDelete, "/students/" + id, ""},
	} {
		rec := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.method+" "+tc.path)

		var body response.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, "storage unavailable")
	}
}
