package fsys

// MaxSymlinkDepth bounds the number of hops resolve will follow before
// declaring a loop, per spec §4.5.
const MaxSymlinkDepth = 40

// ResolveKind distinguishes why Resolve stopped iterating, beyond simply
// returning a path.
type ResolveKind int

const (
	ResolveOK ResolveKind = iota
	ResolveMissing
	ResolveLoop
	ResolveDepthError
)

// Resolve follows a chain of symlinks starting at path, returning the
// first non-symlink path reached. If the current path does not exist at
// any point, it is returned as-is with kind ResolveMissing so the caller
// can distinguish "missing" from "exists but is not a symlink". Exceeding
// MaxSymlinkDepth hops yields ResolveLoop; a normalization failure
// mid-chain yields ResolveDepthError.
func (fs *Filesystem) Resolve(path string) (string, ResolveKind, error) {
	current := path
	for i := 0; i < MaxSymlinkDepth; i++ {
		ino := fs.Lookup(current)
		if ino == nil {
			return current, ResolveMissing, nil
		}
		if ino.Type != TypeSymlink {
			return current, ResolveOK, nil
		}
		next, err := Join(Parent(current), ino.Target)
		if err != nil {
			return "", ResolveDepthError, err
		}
		current = next
	}
	return "", ResolveLoop, ErrSymlinkLoop
}
