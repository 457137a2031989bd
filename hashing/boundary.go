package hashing

// Hash is the string-level entry point for host bindings: it hashes password
// keyed with pepper under [DefaultParams] and returns the PHC string.
//
// The byte copies made from pepper and password are zeroed before returning.
// Go strings themselves are immutable, so callers that can hold secrets in
// byte slices should use [Engine.Hash] and zero the slices themselves.
func Hash(pepper, password string) (string, error) {
	e, err := NewEngine()
	if err != nil {
		return "", err
	}
	pep, pw := []byte(pepper), []byte(password)
	defer clear(pep)
	defer clear(pw)
	return e.Hash(pep, pw)
}

// Verify is the string-level counterpart of [Hash]. It returns nil when
// password matches encoded, [ErrMismatch] when it does not, and an [*Error]
// for unparseable input or a structural failure. Bindings that only carry an
// error string can flatten any of these with err.Error().
func Verify(pepper, password, encoded string) error {
	e, err := NewEngine()
	if err != nil {
		return err
	}
	pep, pw := []byte(pepper), []byte(password)
	defer clear(pep)
	defer clear(pw)

	ok, err := e.Verify(pep, pw, encoded)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMismatch
	}
	return nil
}
