package ope

import "BCLO-OPE/bignum"

// EncryptString encrypts the decimal plaintext under passphrase for a
// [0, 2^pbits) -> [0, 2^cbits) instance and returns the ciphertext in
// decimal. Callers across runtime boundaries exchange decimal strings
// to avoid binary-format disputes.
func EncryptString(passphrase, plaintext string, pbits, cbits int) (string, error) {
	pt, err := bignum.ParseDecimal(plaintext)
	if err != nil {
		return "", err
	}
	o, err := New([]byte(passphrase), pbits, cbits)
	if err != nil {
		return "", err
	}
	ct, err := o.Encrypt(pt)
	if err != nil {
		return "", err
	}
	return bignum.Decimal(ct), nil
}

// DecryptString is the inverse of EncryptString.
func DecryptString(passphrase, ciphertext string, pbits, cbits int) (string, error) {
	ct, err := bignum.ParseDecimal(ciphertext)
	if err != nil {
		return "", err
	}
	o, err := New([]byte(passphrase), pbits, cbits)
	if err != nil {
		return "", err
	}
	pt, err := o.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return bignum.Decimal(pt), nil
}
