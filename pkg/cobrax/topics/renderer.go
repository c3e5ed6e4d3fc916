package topics

// Renderer turns a topic body into terminal text. format is the file
// extension, including the dot.
type Renderer interface {
	Render(content string, format string) string
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(content, format string) string

// Render calls f.
func (f RendererFunc) Render(content, format string) string { return f(content, format) }

// Plain prints topics verbatim.
var Plain Renderer = RendererFunc(func(content, _ string) string { return content })
