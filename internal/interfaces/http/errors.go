package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"fairtickets/internal/domain/resale"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

var kindStatus = map[resale.Kind]int{
	resale.KindPolicyViolation: http.StatusUnprocessableEntity,
	resale.KindAuthorization:   http.StatusForbidden,
	resale.KindStateConflict:   http.StatusConflict,
	resale.KindNotFound:        http.StatusNotFound,
	resale.KindInput:           http.StatusBadRequest,
	resale.KindUnavailable:     http.StatusServiceUnavailable,
}

func errorResponse(err error) (int, ErrorResponse) {
	if status, ok := kindStatus[resale.KindOf(err)]; ok {
		return status, ErrorResponse{Code: resale.CodeOf(err), Error: err.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorResponse{Code: statusCode(he.Code), Error: msg}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Code:  statusCode(http.StatusInternalServerError),
		Error: http.StatusText(http.StatusInternalServerError),
	}
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(c.Request().Context()).
			WithField("error", err).
			WithField("status", status).
			Error("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.FromContext(c.Request().Context()).
			WithField("error", err).
			Error("Failed to write error response")
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
