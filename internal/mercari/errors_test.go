package mercari

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessagesCarryDiagnostics(t *testing.T) {
	changed := &PriceChangedError{Expected: 4800, Actual: 5000}
	assert.Contains(t, changed.Error(), "4800")
	assert.Contains(t, changed.Error(), "5000")

	verification := &PriceVerificationError{Expected: 4900, Actual: 5100}
	assert.Contains(t, verification.Error(), "4900")
	assert.Contains(t, verification.Error(), "5100")

	login := &LoginError{Reason: "credentials were rejected"}
	assert.Contains(t, login.Error(), "credentials were rejected")
}

func TestLaunchErrorUnwraps(t *testing.T) {
	cause := errors.New("chromium executable not found")
	err := fmt.Errorf("profile main: %w", &LaunchError{Err: cause})

	var launchErr *LaunchError
	assert.True(t, errors.As(err, &launchErr))
	assert.ErrorIs(t, err, cause)
}
