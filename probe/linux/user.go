//go:build linux

package linux

import (
	"os/user"
	"strconv"
)

// lookupUsername resolves a UID to a username via os/user, falling back
// to the numeric UID string if NSS lookup fails (e.g. no /etc/passwd
// entry, as in minimal containers).
func lookupUsername(uid uint32) string {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return strconv.FormatUint(uint64(uid), 10)
	}
	return u.Username
}
