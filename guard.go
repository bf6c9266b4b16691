package kennel

// Authorize is the ownership guard: an identity may act on an image only
// if it owns the record. Roles grant no bypass here.
func Authorize(ident Identity, img Image) error {
	if ident.UserID != img.OwnerID {
		return ErrForbidden
	}
	return nil
}
