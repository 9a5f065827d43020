package runner

import "path/filepath"

// ResourceResolver maps a template-relative path to the absolute location of
// the source template file.
type ResourceResolver interface {
	ResolveTemplate(rel string) (string, error)
}

// OutputResolver maps an output-relative directory to the absolute
// destination directory.
type OutputResolver interface {
	ResolveOutputDir(rel string) (string, error)
}

// Resolvers injects the resources and output roots into the runner, keeping
// it testable without any ambient process state.
type Resolvers struct {
	Resources ResourceResolver
	Output    OutputResolver
}

type dirResolver struct {
	root string
}

func (d dirResolver) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel), nil
	}
	return filepath.Abs(filepath.Join(d.root, rel))
}

func (d dirResolver) ResolveTemplate(rel string) (string, error)  { return d.resolve(rel) }
func (d dirResolver) ResolveOutputDir(rel string) (string, error) { return d.resolve(rel) }

// DirResolvers resolves relative paths against a resources root and an
// output root. Empty roots resolve against the working directory.
func DirResolvers(resourcesRoot, outputRoot string) Resolvers {
	return Resolvers{
		Resources: dirResolver{root: resourcesRoot},
		Output:    dirResolver{root: outputRoot},
	}
}
