package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/entity"

	httpMock "github.com/vadimbarashkov/shortlink/mocks/http"
)

type HandlersTestSuite struct {
	suite.Suite
	logger         *httplog.Logger
	urlUseCaseMock *httpMock.MockUrlUseCase
	server         *httptest.Server
	e              *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlUseCaseMock = httpMock.NewMockUrlUseCase(suite.T())

	router := NewRouter(suite.logger, suite.urlUseCaseMock, "")
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlUseCaseMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestPing() {
	const path = "/ping"

	suite.Run("success", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong")
	})
}

func (suite *HandlersTestSuite) TestDocs() {
	suite.Run("swagger document", func() {
		suite.e.GET("/docs/swagger.yml").
			Expect().
			Status(http.StatusOK).
			Body().Contains("/shorten")
	})
}

func (suite *HandlersTestSuite) TestShortenURL() {
	const path = "/shorten"

	suite.Run("empty request body", func() {
		resp := suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.HasValue("message", "empty request body")
	})

	suite.Run("invalid request body", func() {
		resp := suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.HasValue("message", "invalid request body")
	})

	suite.Run("validation error", func() {
		for _, url := range []string{"", "example.com", "ftp://example.com"} {
			resp := suite.e.POST(path).
				WithJSON(map[string]string{"url": url}).
				Expect().
				Status(http.StatusBadRequest).
				JSON().Object()

			resp.HasValue("status", "error")
			resp.ContainsKey("message")
			resp.Value("errors").Array().Value(0).Object().
				HasValue("field", "url").
				ContainsKey("message")
		}
	})

	suite.Run("server error", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(nil, errors.New("disk full"))

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.Value("message").String().Contains("disk full")
	})

	suite.Run("success", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc12345",
				OriginalURL: "https://example.com",
			}, nil)

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			IsEqual(map[string]any{"short_url": suite.server.URL + "/abc12345"})
	})

	suite.Run("configured base url", func() {
		server := httptest.NewServer(NewRouter(suite.logger, suite.urlUseCaseMock, "https://sho.rt/"))
		defer server.Close()

		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc12345",
				OriginalURL: "https://example.com",
			}, nil)

		httpexpect.Default(suite.T(), server.URL).
			POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("short_url", "https://sho.rt/abc12345")
	})
}

func (suite *HandlersTestSuite) TestResolveShortCode() {
	path := "/%s"

	suite.Run("url not found", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "abc12345").
			Once().
			Return(nil, entity.ErrURLNotFound)

		resp := suite.e.GET(fmt.Sprintf(path, "abc12345")).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.HasValue("message", "url not found")
	})

	suite.Run("server error", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "abc12345").
			Once().
			Return(nil, errors.New("unknown error"))

		resp := suite.e.GET(fmt.Sprintf(path, "abc12345")).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.ContainsKey("message")
	})

	suite.Run("success", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "abc12345").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc12345",
				OriginalURL: "https://example.com",
				URLStats: entity.URLStats{
					AccessCount: 1,
				},
			}, nil)

		suite.e.GET(fmt.Sprintf(path, "abc12345")).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})
}

func (suite *HandlersTestSuite) TestGetDashboard() {
	const path = "/dashboard"

	suite.Run("server error", func() {
		suite.urlUseCaseMock.
			On("GetDashboard", mock.Anything).
			Once().
			Return(nil, errors.New("unknown error"))

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.ContainsKey("message")
	})

	suite.Run("empty", func() {
		suite.urlUseCaseMock.
			On("GetDashboard", mock.Anything).
			Once().
			Return(entity.Report{}, nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Object().IsEmpty()
	})

	suite.Run("success", func() {
		suite.urlUseCaseMock.
			On("GetDashboard", mock.Anything).
			Once().
			Return(entity.Report{
				"abc12345": {OriginalURL: "https://example.com", AccessCount: 2},
				"def67890": {OriginalURL: "https://example.org"},
			}, nil)

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.Keys().ContainsOnly("abc12345", "def67890")
		resp.Value("abc12345").Array().IsEqual([]any{"https://example.com", 2})
		resp.Value("def67890").Array().IsEqual([]any{"https://example.org", 0})
	})
}

func TestURLHandler(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
