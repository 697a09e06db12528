package bufpool

// Unreleasable wraps a buffer whose lifecycle is owned elsewhere: retain and
// release become no-ops so borrowers cannot change the underlying reference
// count.
type Unreleasable struct {
	buf *Buffer
}

// MakeUnreleasable wraps b. The caller keeps ownership of b and remains
// responsible for releasing it.
func MakeUnreleasable(b *Buffer) *Unreleasable {
	return &Unreleasable{buf: b}
}

// Retain is a no-op.
func (u *Unreleasable) Retain() *Unreleasable {
	return u
}

// Release is a no-op and always reports false.
func (u *Unreleasable) Release() bool {
	return false
}

// Bytes returns the underlying buffer contents.
func (u *Unreleasable) Bytes() []byte {
	return u.buf.Bytes()
}

// Len returns the underlying buffer length.
func (u *Unreleasable) Len() int {
	return u.buf.Len()
}

// Touch forwards caller context to the underlying buffer's access trail.
func (u *Unreleasable) Touch(hint any) {
	u.buf.Touch(hint)
}
