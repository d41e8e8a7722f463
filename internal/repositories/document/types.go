package document

type GetInput struct {
	Key  string
	Dest any
}

type GetOutput struct {
	Found   bool
	Version int64
}

type TransactInput struct {
	// Keys are every document Fn may load or store
	Keys []string

	// Fn may run more than once when a concurrent writer wins the race,
	// so it must derive everything from what it loads
	Fn func(tx Tx) error
}

type DeleteInput struct {
	Keys []string
}

// ShowKey builds the key of a document that belongs to one show
func ShowKey(showID string, parts ...string) string {
	key := showKeyPrefix + showID
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
