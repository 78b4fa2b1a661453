package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus-api/internal/service"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad body", service.ErrValidation), fiber.StatusBadRequest},
		{fmt.Errorf("%w: already blocked", service.ErrConflict), fiber.StatusBadRequest},
		{service.ErrUnauthenticated, fiber.StatusUnauthorized},
		{fmt.Errorf("%w: not admin", service.ErrForbidden), fiber.StatusForbidden},
		{fmt.Errorf("%w: no such conversation", service.ErrNotFound), fiber.StatusNotFound},
		{errors.New("mongo exploded"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, statusFromError(tc.err), tc.err.Error())
	}
}
