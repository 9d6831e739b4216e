package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	jwttoken "recordgate/internal/jwt_token"
	"recordgate/internal/platform/logger"
	"recordgate/internal/records"
	"recordgate/internal/records/continuation"
	"recordgate/internal/records/models"
	"recordgate/internal/records/persistence"
	"recordgate/internal/records/registry"
	"recordgate/internal/records/store/memory"
)

type RecordsHandlerSuite struct {
	suite.Suite
	router http.Handler
	token  string
}

func TestRecordsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RecordsHandlerSuite))
}

func (s *RecordsHandlerSuite) SetupTest() {
	svc := records.New(records.Collaborators{
		Storage:      memory.NewInMemoryStore(),
		Registration: registry.NewIndex(),
		Continuation: continuation.NewInMemoryStore(time.Minute),
	})
	jwtService := jwttoken.NewJWTService("test-signing-key", "recordgate")
	token, err := jwtService.GenerateAccessToken("clerk-7", time.Hour)
	s.Require().NoError(err)
	s.token = token

	h := New(svc, logger.Discard(), nil, jwttoken.NewJWTServiceAdapter(jwtService), 5*time.Second)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *RecordsHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RecordsHandlerSuite) register(id string) writeResponse {
	w := s.do(http.MethodPost, "/records", writeRequest{Record: encounter(id)})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp writeResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func encounter(id string) *models.Record {
	return &models.Record{
		ID:         models.NewRecordIdentifier("1.2.3", id),
		Type:       "encounter",
		Attributes: map[string]string{"ward": "north"},
		Participants: []models.Participant{
			{ID: "dr-1", Role: models.RoleAuthor},
		},
	}
}

func (s *RecordsHandlerSuite) TestMissingToken() {
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *RecordsHandlerSuite) TestMalformedBody() {
	w := s.do(http.MethodPost, "/records", `{"record":`)

	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(s.T(), "bad_request", body["error"])
}

func (s *RecordsHandlerSuite) TestRegisterAndRetrieve() {
	resp := s.register("R1")
	require.NotNil(s.T(), resp.Identifier)
	assert.Equal(s.T(), "1", resp.Identifier.Version)
	assert.Empty(s.T(), resp.Details)

	w := s.do(http.MethodPost, "/records/retrieve", retrieveRequest{
		Identifiers: []models.RecordIdentifier{models.NewRecordIdentifier("1.2.3", "R1")},
	})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var out retrievalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(s.T(), out.Outcome.Results, 1)
	assert.Equal(s.T(), "R1", out.Outcome.Results[0].ID.Identifier)
	assert.Equal(s.T(), 1, out.Outcome.TotalCandidates)
	assert.NotEqual(s.T(), uuid.Nil, out.Outcome.QueryID)
}

func (s *RecordsHandlerSuite) TestDuplicateRegisterReportsDetails() {
	s.register("R1")
	resp := s.register("R1")

	assert.Nil(s.T(), resp.Identifier)
	require.NotEmpty(s.T(), resp.Details)
	assert.Equal(s.T(), persistence.MsgNoLocalization, resp.Details[0].Message)
	assert.Equal(s.T(), models.DetailError, resp.Details[0].Kind)
	assert.NotEmpty(s.T(), resp.Issues)
}

func (s *RecordsHandlerSuite) TestUpdateUnknownRecord() {
	w := s.do(http.MethodPut, "/records", writeRequest{Record: encounter("R9")})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var resp writeResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(s.T(), resp.Identifier)
	assert.NotEmpty(s.T(), resp.Details)
}

func (s *RecordsHandlerSuite) TestQueryThenContinue() {
	for _, id := range []string{"R1", "R2", "R3"} {
		s.register(id)
	}
	queryID := uuid.New()

	w := s.do(http.MethodPost, "/records/query", queryRequest{Descriptor: models.QueryDescriptor{
		QueryID:    queryID,
		MaxResults: 2,
		OriginatingQuery: &models.Record{
			Filter: &models.Filter{Attributes: map[string]string{"ward": "north"}},
		},
	}})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var first retrievalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(s.T(), first.Outcome.Results, 2)
	assert.Equal(s.T(), 3, first.Outcome.TotalCandidates)

	w = s.do(http.MethodGet, "/records/query/"+queryID.String()+"?start=2&count=5", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var next retrievalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &next))
	require.Len(s.T(), next.Outcome.Results, 1)
	assert.Equal(s.T(), "R3", next.Outcome.Results[0].ID.Identifier)
}

func (s *RecordsHandlerSuite) TestContinueRejectsBadParameters() {
	w := s.do(http.MethodGet, "/records/query/not-a-uuid", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/records/query/"+uuid.NewString()+"?start=x", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *RecordsHandlerSuite) TestContinueUnknownQuery() {
	w := s.do(http.MethodGet, "/records/query/"+uuid.NewString(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var out retrievalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &out))
	assert.Empty(s.T(), out.Outcome.Results)
	assert.NotEmpty(s.T(), out.Details)
}
