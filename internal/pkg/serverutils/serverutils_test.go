package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.Reject(apperror.ReasonInvalidCoupon, "bad coupon"), fiber.StatusBadRequest},
		{"missing subscription", apperror.Reject(apperror.ReasonSubscriptionRequired, "no plan"), fiber.StatusForbidden},
		{"limit reached", apperror.Reject(apperror.ReasonSubscriptionLimitReached, "limit"), fiber.StatusForbidden},
		{"not found", apperror.NotFound(apperror.ReasonEventNotFound, "no event"), fiber.StatusNotFound},
		{"payment", apperror.PaymentFailed(apperror.ReasonPaymentDeclined, "declined", nil), fiber.StatusPaymentRequired},
		{"conflict rejection", apperror.Conflict(apperror.ErrConcurrencyConflict), fiber.StatusConflict},
		{"wrapped conflict", fmt.Errorf("update: %w", apperror.ErrConcurrencyConflict), fiber.StatusConflict},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{"inconsistent", apperror.Inconsistent("drift", nil), fiber.StatusInternalServerError},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func call(t *testing.T, app *fiber.App, method, path, token string) (int, BaseResponse[any]) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandlerRendersRejectionReason(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/limit", func(ctx *fiber.Ctx) error {
		return apperror.Reject(apperror.ReasonSubscriptionLimitReached, "monthly join limit reached")
	})
	app.Get("/crash", func(ctx *fiber.Ctx) error {
		return errors.New("pq: relation does not exist")
	})

	code, body := call(t, app, fiber.MethodGet, "/limit", "")
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.False(t, body.Success)
	assert.Equal(t, string(apperror.ReasonSubscriptionLimitReached), body.Reason)
	assert.Equal(t, "monthly join limit reached", body.Message)

	code, body = call(t, app, fiber.MethodGet, "/crash", "")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body.Message)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddlewareAndRequireRole(t *testing.T) {
	const secret = "test-secret"
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/me", JwtMiddleware(secret), func(ctx *fiber.Ctx) error {
		id, err := UserId(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("OK", id.String()))
	})
	app.Get("/admin", JwtMiddleware(secret), RequireRole("admin"), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse[any]("OK", nil))
	})

	userId := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()
	userToken := signToken(t, secret, jwt.MapClaims{"user_id": userId.String(), "role": "user", "exp": exp})
	adminToken := signToken(t, secret, jwt.MapClaims{"user_id": uuid.NewString(), "role": "admin", "exp": exp})

	code, body := call(t, app, fiber.MethodGet, "/me", userToken)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, userId.String(), body.Data)

	code, _ = call(t, app, fiber.MethodGet, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, app, fiber.MethodGet, "/me", signToken(t, "other-secret", jwt.MapClaims{"user_id": userId.String(), "exp": exp}))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	expired := signToken(t, secret, jwt.MapClaims{"user_id": userId.String(), "exp": time.Now().Add(-time.Minute).Unix()})
	code, _ = call(t, app, fiber.MethodGet, "/me", expired)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, app, fiber.MethodGet, "/admin", userToken)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, app, fiber.MethodGet, "/admin", adminToken)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestValidateRequestCollectsFieldErrors(t *testing.T) {
	type request struct {
		Method   string `validate:"required,oneof=wallet card"`
		Quantity int    `validate:"min=1"`
	}

	assert.NoError(t, ValidateRequest(&request{Method: "wallet", Quantity: 2}))

	err := ValidateRequest(&request{Method: "cash", Quantity: 0})
	require.Error(t, err)
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidRequest))
	assert.Contains(t, err.Error(), "request.Method failed on 'oneof=wallet card'")
	assert.Contains(t, err.Error(), "request.Quantity failed on 'min=1'")
}
