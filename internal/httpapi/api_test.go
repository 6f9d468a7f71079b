package httpapi

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const numberListGrammar = `
	list = NUMBER { "," NUMBER }
	NUMBER = /[0-9]+/
`

func Test_API_CompileAndParse(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	api := New()
	router := api.Router()

	compileReq := httptest.NewRequest("POST", "/v1/grammars", strings.NewReader(numberListGrammar))
	compileRec := httptest.NewRecorder()
	router.ServeHTTP(compileRec, compileReq)

	require.Equal(200, compileRec.Code)
	assert.NotEmpty(compileRec.Header().Get("X-Request-Id"))

	var compiled CompileGrammarResponse
	require.NoError(json.Unmarshal(compileRec.Body.Bytes(), &compiled))
	require.NotEmpty(compiled.ID)

	parseReq := httptest.NewRequest("POST", "/v1/grammars/"+compiled.ID+"/parse", strings.NewReader("1, 2, 3"))
	parseRec := httptest.NewRecorder()
	router.ServeHTTP(parseRec, parseReq)

	assert.Equal(200, parseRec.Code)
}

func Test_API_ParseUnknownGrammar(t *testing.T) {
	assert := assert.New(t)

	api := New()
	router := api.Router()

	req := httptest.NewRequest("POST", "/v1/grammars/does-not-exist/parse", strings.NewReader("1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(404, rec.Code)
}

func Test_API_CompileInvalidGrammar(t *testing.T) {
	assert := assert.New(t)

	api := New()
	router := api.Router()

	req := httptest.NewRequest("POST", "/v1/grammars", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(422, rec.Code)
}
