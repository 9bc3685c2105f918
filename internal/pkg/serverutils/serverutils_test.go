package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/app", func(ctx *fiber.Ctx) error {
		return apperrors.ErrFeatureReferenced("app", "cli")
	})
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(http.StatusMethodNotAllowed, "nope")
	})
	app.Get("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("db exploded")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusBadRequest, apperrors.CodeFeatureReferenced},
		{"/fiber", http.StatusMethodNotAllowed, ""},
		{"/plain", http.StatusInternalServerError, apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Code)
			if tt.wantCode == "" {
				assert.Nil(t, body.Error)
				return
			}
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestErrorHandlerMiddleware_ParamsAreExposed(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return apperrors.ErrFeatureNotFound("a", "b")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []interface{}{"a", "b"}, body.Error.Params["names"])
}

func TestValidateRequest(t *testing.T) {
	type page struct {
		Offset int `validate:"min=0"`
		Limit  int `validate:"min=1,max=500"`
	}

	assert.NoError(t, ValidateRequest(page{Offset: 0, Limit: 10}))

	err := ValidateRequest(page{Offset: -1, Limit: 0})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	assert.Len(t, appErr.Params["fields"], 2)
}
