package assets

// LoadContext lets a loader resolve assets it references, such as the
// texture maps named by a material file.
type LoadContext interface {
	Acquire(path string) (Asset, error)
}

// Loader turns a file into an asset. Loaders run on watcher and job
// goroutines, so they must not touch render-thread state.
type Loader interface {
	Load(path string, ctx LoadContext) (Asset, error)
}

// Replace copies the contents of src into dst, bumping dst's version.
// Both must be the same kind.
func Replace(dst, src Asset) error {
	switch d := dst.(type) {
	case *Mesh:
		s, ok := src.(*Mesh)
		if !ok {
			return errKindMismatch(dst, src)
		}
		d.SetGeometry(s.vertices, s.indices)
	case *Image:
		s, ok := src.(*Image)
		if !ok {
			return errKindMismatch(dst, src)
		}
		d.SetPixels(s.width, s.height, s.format, s.pixels)
	case *Material:
		s, ok := src.(*Material)
		if !ok {
			return errKindMismatch(dst, src)
		}
		d.CopyFrom(s)
	default:
		return errKindMismatch(dst, src)
	}
	return nil
}
