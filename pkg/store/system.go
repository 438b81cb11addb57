package store

// System keys hold store-wide bookkeeping (schema version, migration flags)
// outside the conversation keyspace.

// GetSystem returns the value of a system key, a found flag, and an error
// for storage failures.
func GetSystem(name string) (string, bool, error) {
	if db == nil {
		return "", false, notOpen()
	}
	v, ok, err := get("system:" + name)
	if err != nil || !ok {
		return "", false, err
	}
	return string(v), true, nil
}

// SetSystem writes a system key.
func SetSystem(name, value string) error {
	if db == nil {
		return notOpen()
	}
	return set("system:"+name, []byte(value))
}

// DelSystem removes a system key.
func DelSystem(name string) error {
	if db == nil {
		return notOpen()
	}
	return del("system:" + name)
}

// ScanAllMembers walks every membership row in the store, calling fn with
// the conversation and user ids. Used by startup migrations.
func ScanAllMembers(fn func(convID, userID string) error) error {
	if db == nil {
		return notOpen()
	}
	return scanMemberKeys(fn)
}
