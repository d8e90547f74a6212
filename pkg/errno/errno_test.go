package errno

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConvertErr(t *testing.T) {
	assert.Equal(t, Success, ConvertErr(nil))
	assert.Equal(t, GifNotExistErr, ConvertErr(GifNotExistErr))

	wrapped := pkgerrors.WithMessage(ForbiddenErr, "delete gif")
	assert.Equal(t, ForbiddenErr, ConvertErr(wrapped))

	plain := ConvertErr(errors.New("boom"))
	assert.Equal(t, int64(ServiceErrCode), plain.ErrCode)
	assert.Equal(t, "boom", plain.ErrMsg)
}

func TestWithMessageKeepsCode(t *testing.T) {
	e := ValidationErr.WithMessage("title is required")
	assert.Equal(t, int64(ValidationErrCode), e.ErrCode)
	assert.Equal(t, "title is required", e.ErrMsg)
	assert.Equal(t, "Validation failed", ValidationErr.ErrMsg)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]ErrNo{
		http.StatusOK:                    Success,
		http.StatusUnauthorized:          TokenRevokedErr,
		http.StatusForbidden:             ForbiddenErr,
		http.StatusNotFound:              CollectionNotExistErr,
		http.StatusConflict:              UserAlreadyExistErr,
		http.StatusUnprocessableEntity:   ValidationErr,
		http.StatusTooManyRequests:       TooManyRequestsErr,
		http.StatusInternalServerError:   ServiceErr,
		http.StatusRequestEntityTooLarge: FileTooLargeErr,
	}
	for status, e := range cases {
		assert.Equal(t, status, HTTPStatus(e), e.ErrMsg)
	}
}
