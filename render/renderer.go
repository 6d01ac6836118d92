package render

// Renderer turns one frame's draw list into encoded output bytes, e.g. a PNG
// image. The engine never holds a concrete display handle; backends are
// injected behind this interface.
type Renderer interface {
	RenderFrame(f *Frame) ([]byte, error)
}

// Presenter displays frames directly (e.g. a terminal preview) instead of
// encoding them.
type Presenter interface {
	Present(f *Frame) error
	Close()
}
