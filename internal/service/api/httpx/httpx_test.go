package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamgrid/streamgrid/internal/domain"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: username is required", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrConflict, http.StatusConflict},
		{errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := Status(tc.err)
		require.Equal(t, tc.want, got, "err=%v", tc.err)
	}
}

func TestStatusHidesInternalDetail(t *testing.T) {
	_, msg := Status(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	require.Equal(t, "internal error", msg)
}
