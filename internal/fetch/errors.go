package fetch

import (
	"fmt"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

// NetworkError covers timeouts, connection failures and non-2xx responses.
// Callers recover from it locally; it never aborts a run.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes both the cause and the ErrNetwork class.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrNetwork}
	}
	return []error{common.ErrNetwork, e.Err}
}
