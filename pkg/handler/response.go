package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/pkg/errs"
)

type Error struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// newErrorResponse maps the error taxonomy onto transport statuses. The
// mapping is the only place HTTP knows about error kinds.
func newErrorResponse(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case errs.Validation, errs.WrongKind:
		status = http.StatusBadRequest
	case errs.Unauthorized:
		status = http.StatusUnauthorized
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.InvalidTransition, errs.Conflict:
		status = http.StatusConflict
	case errs.InsufficientFunds:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logrus.Error(err.Error())
		c.AbortWithStatusJSON(status, Error{Message: "something went wrong"})
		return
	}
	c.AbortWithStatusJSON(status, Error{Message: err.Error(), Kind: kind.String()})
}

func newBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Error{Message: message, Kind: errs.Validation.String()})
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}
