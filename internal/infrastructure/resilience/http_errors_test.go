package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sony/gobreaker/v2"
)

func TestClassifyHTTPError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		retry   bool
		failure bool
	}{
		{"canceled", context.Canceled, false, false},
		{"open breaker", gobreaker.ErrOpenState, true, true},
		{"503", &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}, true, true},
		{"400", &HTTPStatusError{StatusCode: http.StatusBadRequest}, false, false},
		{"wrapped 429", fmt.Errorf("call: %w", &HTTPStatusError{StatusCode: http.StatusTooManyRequests}), true, true},
		{"decode", errors.New("decode response"), false, true},
	}
	for _, tc := range cases {
		v := ClassifyHTTPError(tc.err)
		if v.Retry != tc.retry || v.Failure != tc.failure {
			t.Fatalf("%s: got %+v", tc.name, v)
		}
	}
}
