package domain

// Zero overwrites b with zeros. Derived keys and master secret copies are
// zeroed as soon as they are no longer needed.
func Zero(b []byte) {
	clear(b)
}
