package shared

import "fmt"

// ImportLockKey builds the redis key serializing sales imports for one
// (target period, sales channel) pair. Two imports for the same pair must not
// interleave: in overwrite mode both could observe the pre-delete state.
func ImportLockKey(targetYm string, salesChannelID int64) string {
	return fmt.Sprintf("import:sales:%s:%d:lock", targetYm, salesChannelID)
}
