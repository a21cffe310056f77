package user

// PasswordResetPair returns the uid and token that the password reset email of usr would carry.
// Tests use it to confirm resets without parsing emails.
func PasswordResetPair(svc *Service, usr User) (uid, token string) {
	return EncodeUID(usr), svc.tokens.makeToken(usr)
}
