package proposal

import (
	"strings"

	"github.com/google/uuid"
)

const blindCodePrefix = "B-"

// CodeGenerator produces candidate blind codes. Uniqueness within a call is
// enforced by the database index, so generators only need to be unlikely
// to collide.
type CodeGenerator func() string

// NewBlindCode returns a short opaque code such as "B-3F9A01C2".
func NewBlindCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return blindCodePrefix + strings.ToUpper(raw[:8])
}

func IsBlindCode(s string) bool {
	if !strings.HasPrefix(s, blindCodePrefix) || len(s) != len(blindCodePrefix)+8 {
		return false
	}
	for _, r := range s[len(blindCodePrefix):] {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
