package notify

import (
	"errors"
	"fmt"

	"github.com/ttacon/libphonenumber"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses raw in the context of region and returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	p, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidPhone, raw, err)
	}

	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("%w %q", ErrInvalidPhone, raw)
	}

	return libphonenumber.Format(p, libphonenumber.E164), nil
}
