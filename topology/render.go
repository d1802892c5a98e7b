package topology

import (
	"io"

	"sigs.k8s.io/yaml"
)

const documentSeparator = "---\n"

// Render writes the stack as multi-document YAML, secrets redacted.
func (s *Stack) Render(w io.Writer) error {
	ordered, err := s.Ordered()
	if err != nil {
		return err
	}
	return Render(w, ordered)
}

func Render(w io.Writer, resources []*Resource) error {
	for _, r := range resources {
		b, err := yaml.Marshal(r.Object)
		if err != nil {
			return err
		}
		if _, err = io.WriteString(w, documentSeparator); err != nil {
			return err
		}
		if _, err = w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
